package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dbutil "github.com/promptpress/promptpress/internal/db"
	"github.com/promptpress/promptpress/internal/images"
	"github.com/promptpress/promptpress/internal/models"
	"gorm.io/gorm"
)

// PostHandler handles blog post endpoints.
type PostHandler struct {
	db     *gorm.DB
	images *images.Storage
}

// NewPostHandler constructs a PostHandler.
func NewPostHandler(db *gorm.DB, imageStorage *images.Storage) *PostHandler {
	return &PostHandler{db: db, images: imageStorage}
}

// List returns the caller's posts when authenticated, or all published posts
// otherwise.
func (h *PostHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	query := h.db.WithContext(ctx).Order("created_at DESC")

	if userID, ok := currentUserID(c); ok {
		query = query.Where("author_id = ?", userID)
	} else {
		query = query.Where("is_public = ?", true)
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+q+"%")
		query = query.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "title"), pattern)
	}

	var posts []models.Post
	if errFind := query.Find(&posts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list posts failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": newPostViews(posts)})
}

// Get returns one post. Private posts are visible only to their owner.
func (h *PostHandler) Get(c *gin.Context) {
	postID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var post models.Post
	errFind := h.db.WithContext(c.Request.Context()).First(&post, postID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get post failed"})
		return
	}

	if !post.IsPublic {
		userID, ok := currentUserID(c)
		if !ok || userID != post.AuthorID {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"post": newPostView(post)})
}

// postRequest defines the payload for creating or updating a post.
type postRequest struct {
	Title           string  `json:"title"`           // Post title.
	Content         string  `json:"content"`         // Post body.
	MetaDescription string  `json:"metaDescription"` // Optional SEO description.
	ImageURL        *string `json:"imageUrl"`        // Optional image reference.
}

// Create stores a new private post owned by the caller.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req postRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	post := models.Post{
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		ImageURL:        req.ImageURL,
		AuthorID:        userID,
		AuthorName:      currentUsername(c),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&post).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create post failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": newPostView(post)})
}

// Update modifies a post owned by the caller.
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	postID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req postRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	post, handled := h.loadOwnedPost(c, ctx, postID, userID)
	if handled {
		return
	}

	if strings.TrimSpace(req.Title) != "" {
		post.Title = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.Content) != "" {
		post.Content = req.Content
	}
	if strings.TrimSpace(req.MetaDescription) != "" {
		post.MetaDescription = strings.TrimSpace(req.MetaDescription)
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	}
	if errSave := h.db.WithContext(ctx).Save(&post).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update post failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": newPostView(post)})
}

// publishRequest defines the payload for toggling post visibility.
type publishRequest struct {
	IsPublic *bool `json:"isPublic"` // Desired visibility; nil means publish.
}

// Publish toggles a post's public visibility.
func (h *PostHandler) Publish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	postID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req publishRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	ctx := c.Request.Context()
	post, handled := h.loadOwnedPost(c, ctx, postID, userID)
	if handled {
		return
	}

	post.IsPublic = isPublic
	if errSave := h.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Update("is_public", isPublic).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publish post failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": newPostView(post)})
}

// Delete removes a post owned by the caller and its materialized image.
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	postID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx := c.Request.Context()
	post, handled := h.loadOwnedPost(c, ctx, postID, userID)
	if handled {
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&models.Post{}, post.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete post failed"})
		return
	}
	if post.ImageURL != nil && h.images != nil {
		h.images.DeleteImage(*post.ImageURL)
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// loadOwnedPost fetches a post and enforces ownership, writing the error
// response itself. The bool return reports whether a response was written.
func (h *PostHandler) loadOwnedPost(c *gin.Context, ctx context.Context, postID, userID uint64) (models.Post, bool) {
	var post models.Post
	errFind := h.db.WithContext(ctx).First(&post, postID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return post, true
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get post failed"})
		return post, true
	}
	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your post"})
		return post, true
	}
	return post, false
}
