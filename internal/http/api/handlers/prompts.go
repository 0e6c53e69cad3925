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

// PromptHandler handles master prompt endpoints. Prompts are always
// owner-scoped; there is no public prompt surface.
type PromptHandler struct {
	db *gorm.DB
}

// NewPromptHandler constructs a PromptHandler.
func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{db: db}
}

// List returns the caller's prompts, newest first.
func (h *PromptHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var prompts []models.Prompt
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("author_id = ?", userID).
		Order("created_at DESC").
		Find(&prompts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list prompts failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": newPromptViews(prompts)})
}

// Get returns one prompt owned by the caller.
func (h *PromptHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	promptID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || promptID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	var prompt models.Prompt
	errFind := h.db.WithContext(c.Request.Context()).First(&prompt, promptID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get prompt failed"})
		return
	}
	if prompt.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your prompt"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": newPromptView(prompt)})
}

// promptRequest defines the payload for creating or updating a prompt.
type promptRequest struct {
	Title    string `json:"title"`    // Display title.
	Content  string `json:"content"`  // Instruction template.
	Category string `json:"category"` // Optional category label.
}

// Create stores a new prompt owned by the caller.
func (h *PromptHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req promptRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}

	prompt := models.Prompt{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Category:   category,
		AuthorID:   userID,
		AuthorName: currentUsername(c),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&prompt).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create prompt failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prompt": newPromptView(prompt)})
}

// Update modifies a prompt owned by the caller.
func (h *PromptHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	promptID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || promptID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	var req promptRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var prompt models.Prompt
	errFind := h.db.WithContext(ctx).First(&prompt, promptID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get prompt failed"})
		return
	}
	if prompt.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your prompt"})
		return
	}

	if strings.TrimSpace(req.Title) != "" {
		prompt.Title = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.Content) != "" {
		prompt.Content = req.Content
	}
	if strings.TrimSpace(req.Category) != "" {
		prompt.Category = strings.TrimSpace(req.Category)
	}
	if errSave := h.db.WithContext(ctx).Save(&prompt).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update prompt failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": newPromptView(prompt)})
}

// Delete removes a prompt owned by the caller.
func (h *PromptHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	promptID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || promptID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	ctx := c.Request.Context()
	var prompt models.Prompt
	errFind := h.db.WithContext(ctx).First(&prompt, promptID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get prompt failed"})
		return
	}
	if prompt.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your prompt"})
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&models.Prompt{}, prompt.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete prompt failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "prompt deleted"})
}
