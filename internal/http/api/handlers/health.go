package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/mail"
	"gorm.io/gorm"
)

// HealthHandler reports service health and dependency readiness.
type HealthHandler struct {
	db        *gorm.DB
	openaiCfg config.OpenAIConfig
	mailer    *mail.Mailer
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, openaiCfg config.OpenAIConfig, mailer *mail.Mailer) *HealthHandler {
	return &HealthHandler{db: db, openaiCfg: openaiCfg, mailer: mailer}
}

// Health returns overall status plus per-service readiness flags.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	if h.db != nil {
		if sqlDB, errDB := h.db.DB(); errDB != nil || sqlDB.Ping() != nil {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"services": gin.H{
			"email":  h.mailer.Ready(),
			"openai": h.openaiCfg.Configured(),
		},
	})
}
