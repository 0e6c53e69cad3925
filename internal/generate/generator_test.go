package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/openai"
)

func testOpenAIConfig() config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

func testGenerationConfig() config.GenerationConfig {
	return config.GenerationConfig{
		DailyMax:           4,
		ContentLength:      800,
		TitleLength:        60,
		MetaLength:         160,
		UsageRetentionDays: 30,
	}
}

func chatReply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func TestGenerateBlogPost_WithImage(t *testing.T) {
	var chatCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			if chatCalls.Add(1) == 1 {
				chatReply(w, "TITLE: Coffee\nMETA: About coffee\nCONTENT: Line one\nLine two")
				return
			}
			chatReply(w, "a steaming cup of coffee on a wooden table")
		case "/images/generations":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"url": "https://img.example/coffee.png"}},
			})
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	gen := NewGenerator(openai.NewClientWithBaseURL(testOpenAIConfig(), srv.URL), testGenerationConfig())
	blog, err := gen.GenerateBlogPost(context.Background(), "Write like Hemingway", "coffee", "casual")
	if err != nil {
		t.Fatalf("generate blog post: %v", err)
	}
	if blog.Title != "Coffee" {
		t.Fatalf("unexpected title %q", blog.Title)
	}
	if blog.Content != "Line one\nLine two" {
		t.Fatalf("unexpected content %q", blog.Content)
	}
	if blog.ImageURL == nil || *blog.ImageURL != "https://img.example/coffee.png" {
		t.Fatalf("unexpected image url %v", blog.ImageURL)
	}
}

func TestGenerateBlogPost_ImageFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			chatReply(w, "TITLE: Coffee\nMETA: m\nCONTENT: body")
		case "/images/generations":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	gen := NewGenerator(openai.NewClientWithBaseURL(testOpenAIConfig(), srv.URL), testGenerationConfig())
	blog, err := gen.GenerateBlogPost(context.Background(), "mp", "coffee", "")
	if err != nil {
		t.Fatalf("image failure must not fail text generation: %v", err)
	}
	if blog.ImageURL != nil {
		t.Fatalf("expected nil image url, got %v", *blog.ImageURL)
	}
	if blog.Title != "Coffee" || blog.Content != "body" {
		t.Fatalf("text result corrupted: %+v", blog)
	}
}

func TestGenerateBlogImage_FallbackPrompt(t *testing.T) {
	var chatCalls, imageCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			chatCalls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		case "/images/generations":
			imageCalls.Add(1)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			prompt, _ := body["prompt"].(string)
			if prompt != FallbackImagePrompt("Coffee", "brewing") {
				t.Fatalf("expected fallback prompt, got %q", prompt)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"url": "https://img.example/fallback.png"}},
			})
		}
	}))
	defer srv.Close()

	gen := NewGenerator(openai.NewClientWithBaseURL(testOpenAIConfig(), srv.URL), testGenerationConfig())
	url, err := gen.GenerateBlogImage(context.Background(), "Coffee", "brewing")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if url != "https://img.example/fallback.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if chatCalls.Load() != 1 || imageCalls.Load() != 1 {
		t.Fatalf("unexpected call counts chat=%d image=%d", chatCalls.Load(), imageCalls.Load())
	}
}

func TestGenerateBlogPost_ChatFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gen := NewGenerator(openai.NewClientWithBaseURL(testOpenAIConfig(), srv.URL), testGenerationConfig())
	if _, err := gen.GenerateBlogPost(context.Background(), "mp", "topic", ""); err == nil {
		t.Fatalf("expected error when chat call fails")
	}
}
