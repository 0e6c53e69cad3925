package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/openai"

	log "github.com/sirupsen/logrus"
)

// imagePromptMaxTokens bounds the chat call that writes the image prompt.
const imagePromptMaxTokens = 200

// GeneratedBlog is the structured result of one blog generation.
type GeneratedBlog struct {
	Title           string  `json:"title"`
	MetaDescription string  `json:"metaDescription"`
	Content         string  `json:"content"`
	ImageURL        *string `json:"imageUrl"`
}

// BlogGenerator produces blog artifacts from a master prompt and topic.
type BlogGenerator interface {
	Ready() bool
	GenerateBlogPost(ctx context.Context, masterPrompt, topic, style string) (*GeneratedBlog, error)
}

// Generator implements BlogGenerator on top of the OpenAI client.
type Generator struct {
	client *openai.Client
	cfg    config.GenerationConfig
}

// NewGenerator constructs a Generator.
func NewGenerator(client *openai.Client, cfg config.GenerationConfig) *Generator {
	return &Generator{client: client, cfg: cfg}
}

// Ready reports whether the underlying model client is configured.
func (g *Generator) Ready() bool {
	return g != nil && g.client.Ready()
}

// GenerateBlogPost produces blog text and, best-effort, a header image URL.
// Image failures never fail the text result.
func (g *Generator) GenerateBlogPost(ctx context.Context, masterPrompt, topic, style string) (*GeneratedBlog, error) {
	if !g.Ready() {
		return nil, fmt.Errorf("generate: client not configured")
	}
	if strings.TrimSpace(style) == "" {
		style = "informative"
	}

	prompt := BuildBlogPrompt(masterPrompt, topic, style, g.cfg.TitleLength, g.cfg.ContentLength, g.cfg.MetaLength)
	raw, errChat := g.client.ChatCompletion(ctx, systemPrompt, prompt, g.client.MaxTokens(), g.client.Temperature())
	if errChat != nil {
		return nil, fmt.Errorf("generate: blog post: %w", errChat)
	}

	parsed := ParseGenerated(raw)
	result := &GeneratedBlog{
		Title:           parsed.Title,
		MetaDescription: parsed.MetaDescription,
		Content:         parsed.Content,
	}

	imageURL, errImage := g.GenerateBlogImage(ctx, parsed.Title, topic)
	if errImage != nil {
		log.WithError(errImage).Warn("image generation failed, continuing without image")
		return result, nil
	}
	result.ImageURL = &imageURL
	return result, nil
}

// GenerateBlogImage builds an image prompt and requests one header image.
func (g *Generator) GenerateBlogImage(ctx context.Context, title, topic string) (string, error) {
	if !g.Ready() {
		return "", fmt.Errorf("generate: client not configured")
	}

	imagePrompt, errPrompt := g.client.ChatCompletion(ctx, "", BuildImagePromptRequest(title, topic), imagePromptMaxTokens, g.client.Temperature())
	if errPrompt != nil {
		log.WithError(errPrompt).Warn("image prompt generation failed, using fallback prompt")
		imagePrompt = FallbackImagePrompt(title, topic)
	}

	url, errImage := g.client.GenerateImage(ctx, imagePrompt)
	if errImage != nil {
		return "", fmt.Errorf("generate: image: %w", errImage)
	}
	return url, nil
}

var _ BlogGenerator = (*Generator)(nil)
