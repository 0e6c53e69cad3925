package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promptpress/promptpress/internal/models"
	"gorm.io/gorm"
)

// PublicHandler serves the unauthenticated viewer surface: one user's
// published posts.
type PublicHandler struct {
	db *gorm.DB
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// ListPosts returns a user's published posts, newest first.
func (h *PublicHandler) ListPosts(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get user failed"})
		return
	}

	var posts []models.Post
	if errPosts := h.db.WithContext(ctx).
		Where("author_id = ? AND is_public = ?", user.ID, true).
		Order("created_at DESC").
		Find(&posts).Error; errPosts != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"author": gin.H{"username": user.Username},
		"posts":  newPostViews(posts),
	})
}

// GetPost returns one published post belonging to the named user.
func (h *PublicHandler) GetPost(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	postID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if username == "" || errParse != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var post models.Post
	errPost := h.db.WithContext(ctx).
		Where("id = ? AND author_id = ? AND is_public = ?", postID, user.ID, true).
		First(&post).Error
	if errPost != nil {
		if errors.Is(errPost, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get post failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": newPostView(post)})
}
