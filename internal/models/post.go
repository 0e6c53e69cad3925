package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post represents a blog post, hand-written or AI-generated.
type Post struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title           string `gorm:"type:text;not null"` // Post title.
	Content         string `gorm:"type:text;not null"` // Post body.
	MetaDescription string `gorm:"type:text"`          // SEO meta description.

	// ImageURL is either a remote URL pending download or a local
	// /blog_images/... path after materialization.
	ImageURL *string `gorm:"type:text"`

	AuthorID   uint64 `gorm:"not null;index"`     // Owning user ID.
	AuthorName string `gorm:"type:text;not null"` // Denormalized author username.

	IsPublic bool `gorm:"not null;default:false"` // Published flag; posts start private.

	// GeneratedFrom carries provenance for AI-generated posts:
	// {prompt_id, prompt_title, topic, style}. Null for hand-written posts.
	GeneratedFrom datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// GenerationSource describes the prompt and parameters a post was generated from.
type GenerationSource struct {
	PromptID    uint64 `json:"prompt_id"`
	PromptTitle string `json:"prompt_title"`
	Topic       string `json:"topic"`
	Style       string `json:"style"`
}
