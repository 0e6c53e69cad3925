package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/generate"
	"github.com/promptpress/promptpress/internal/images"
	"github.com/promptpress/promptpress/internal/models"
	"github.com/promptpress/promptpress/internal/ratelimit"
	"github.com/promptpress/promptpress/internal/usage"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AIBlogHandler orchestrates AI blog generation requests.
type AIBlogHandler struct {
	db        *gorm.DB
	generator generate.BlogGenerator
	ledger    *usage.Ledger
	images    *images.Storage
	limiter   *ratelimit.Manager
	openaiCfg config.OpenAIConfig
	genCfg    config.GenerationConfig
}

// NewAIBlogHandler constructs an AIBlogHandler.
func NewAIBlogHandler(db *gorm.DB, generator generate.BlogGenerator, ledger *usage.Ledger, imageStorage *images.Storage, limiter *ratelimit.Manager, openaiCfg config.OpenAIConfig, genCfg config.GenerationConfig) *AIBlogHandler {
	return &AIBlogHandler{
		db:        db,
		generator: generator,
		ledger:    ledger,
		images:    imageStorage,
		limiter:   limiter,
		openaiCfg: openaiCfg,
		genCfg:    genCfg,
	}
}

// generateRequest defines the payload for one generation run.
type generateRequest struct {
	PromptID uint64 `json:"promptId"` // Master prompt to generate from.
	Topic    string `json:"topic"`    // Blog topic.
	Style    string `json:"style"`    // Optional writing style.
	AutoSave bool   `json:"autoSave"` // Persist the result as a post.
}

// Generate runs the generation pipeline: validation, ownership, rate limit,
// quota, model calls, optional persistence and image materialization, usage
// increment. Only image failures are absorbed; everything else aborts.
func (h *AIBlogHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req generateRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PromptID == 0 || strings.TrimSpace(req.Topic) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "promptId and topic are required"})
		return
	}

	if h.generator == nil || !h.generator.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "blog generation service is not available"})
		return
	}

	ctx := c.Request.Context()

	var prompt models.Prompt
	errFind := h.db.WithContext(ctx).First(&prompt, req.PromptID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get prompt failed"})
		return
	}
	if prompt.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only generate from your own prompts"})
		return
	}

	if h.limiter != nil && h.genCfg.RateLimitPerSec > 0 {
		result, errLimit := h.limiter.Allow(ctx, ratelimit.KeyForUser(userID), h.genCfg.RateLimitPerSec)
		if errLimit == nil && !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
	}

	// The quota check runs strictly before any model call so blocked
	// requests never consume upstream quota.
	if !h.ledger.CanGenerate(ctx, userID) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "daily generation limit reached",
			"remaining": 0,
		})
		return
	}

	style := strings.TrimSpace(req.Style)
	topic := strings.TrimSpace(req.Topic)
	blog, errGenerate := h.generator.GenerateBlogPost(ctx, prompt.Content, topic, style)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errGenerate.Error()})
		return
	}

	if style == "" {
		style = "informative"
	}

	if !req.AutoSave {
		c.JSON(http.StatusOK, gin.H{
			"generated":     false,
			"generatedBlog": blog,
			"promptUsed":    gin.H{"id": prompt.ID, "title": prompt.Title},
			"generationParams": gin.H{
				"topic": topic,
				"style": style,
			},
		})
		return
	}

	post, errSave := h.savePost(c, prompt, blog, topic, style, userID)
	if errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save post failed"})
		return
	}

	if _, errIncrement := h.ledger.Increment(ctx, userID); errIncrement != nil {
		log.WithError(errIncrement).Warn("usage increment failed after generation")
	}

	c.JSON(http.StatusCreated, gin.H{
		"generated":  true,
		"post":       newPostView(post),
		"usageStats": h.ledger.GetStats(ctx, userID),
	})
}

// savePost persists the generated post, then materializes its image. Image
// failures leave the saved post with a null image.
func (h *AIBlogHandler) savePost(c *gin.Context, prompt models.Prompt, blog *generate.GeneratedBlog, topic, style string, userID uint64) (models.Post, error) {
	ctx := c.Request.Context()

	source, errMarshal := json.Marshal(models.GenerationSource{
		PromptID:    prompt.ID,
		PromptTitle: prompt.Title,
		Topic:       topic,
		Style:       style,
	})
	if errMarshal != nil {
		return models.Post{}, errMarshal
	}

	post := models.Post{
		Title:           blog.Title,
		Content:         blog.Content,
		MetaDescription: blog.MetaDescription,
		AuthorID:        userID,
		AuthorName:      currentUsername(c),
		GeneratedFrom:   source,
	}
	if errCreate := h.db.WithContext(ctx).Create(&post).Error; errCreate != nil {
		return models.Post{}, errCreate
	}

	if blog.ImageURL != nil && h.images != nil {
		localPath, errImage := h.images.SaveGeneratedImage(ctx, *blog.ImageURL, post.ID, post.Title)
		if errImage != nil {
			log.WithError(errImage).Warn("image materialization failed, keeping post without image")
			return post, nil
		}
		if errUpdate := h.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", post.ID).
			Update("image_url", localPath).Error; errUpdate != nil {
			log.WithError(errUpdate).Warn("failed to record materialized image path")
			return post, nil
		}
		post.ImageURL = &localPath
	}
	return post, nil
}

// Status reports generation service availability.
func (h *AIBlogHandler) Status(c *gin.Context) {
	available := h.generator != nil && h.generator.Ready()
	c.JSON(http.StatusOK, gin.H{
		"available": available,
		"model":     h.openaiCfg.Model,
		"maxTokens": h.openaiCfg.MaxTokens,
	})
}

// Usage returns today's generation allowance for the caller.
func (h *AIBlogHandler) Usage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, h.ledger.GetStats(c.Request.Context(), userID))
}
