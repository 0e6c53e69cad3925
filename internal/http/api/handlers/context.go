package handlers

import (
	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated caller's user ID, if any.
func currentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// currentUsername returns the authenticated caller's username, if any.
func currentUsername(c *gin.Context) string {
	v, ok := c.Get("username")
	if !ok {
		return ""
	}
	name, _ := v.(string)
	return name
}
