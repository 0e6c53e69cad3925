package handlers

import (
	"encoding/json"
	"time"

	"github.com/promptpress/promptpress/internal/models"
)

// userView is the JSON shape for account data.
type userView struct {
	ID            uint64    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newUserView(u models.User) userView {
	return userView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// promptView is the JSON shape for master prompts.
type promptView struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	AuthorID   uint64    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	IsPublic   bool      `json:"isPublic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newPromptView(p models.Prompt) promptView {
	return promptView{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Category:   p.Category,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		IsPublic:   p.IsPublic,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func newPromptViews(prompts []models.Prompt) []promptView {
	views := make([]promptView, 0, len(prompts))
	for _, p := range prompts {
		views = append(views, newPromptView(p))
	}
	return views
}

// postView is the JSON shape for posts.
type postView struct {
	ID              uint64                   `json:"id"`
	Title           string                   `json:"title"`
	Content         string                   `json:"content"`
	MetaDescription string                   `json:"metaDescription"`
	ImageURL        *string                  `json:"imageUrl"`
	AuthorID        uint64                   `json:"authorId"`
	AuthorName      string                   `json:"authorName"`
	IsPublic        bool                     `json:"isPublic"`
	GeneratedFrom   *models.GenerationSource `json:"generatedFrom,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func newPostView(p models.Post) postView {
	view := postView{
		ID:              p.ID,
		Title:           p.Title,
		Content:         p.Content,
		MetaDescription: p.MetaDescription,
		ImageURL:        p.ImageURL,
		AuthorID:        p.AuthorID,
		AuthorName:      p.AuthorName,
		IsPublic:        p.IsPublic,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if len(p.GeneratedFrom) > 0 {
		var source models.GenerationSource
		if errUnmarshal := json.Unmarshal(p.GeneratedFrom, &source); errUnmarshal == nil {
			view.GeneratedFrom = &source
		}
	}
	return view
}

func newPostViews(posts []models.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views
}
