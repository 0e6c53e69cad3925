package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/promptpress/promptpress/internal/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// imageModel is the fixed model used for blog header images.
const imageModel = "dall-e-3"

// Client wraps the OpenAI chat completion and image generation endpoints.
type Client struct {
	cfg        config.OpenAIConfig
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client from OpenAI configuration.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// NewClientWithBaseURL constructs a Client against a custom endpoint.
func NewClientWithBaseURL(cfg config.OpenAIConfig, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Ready reports whether the client has a usable API key.
func (c *Client) Ready() bool {
	return c != nil && c.cfg.Configured()
}

// Model returns the configured chat model name.
func (c *Client) Model() string { return c.cfg.Model }

// MaxTokens returns the configured completion token limit.
func (c *Client) MaxTokens() int { return c.cfg.MaxTokens }

// Temperature returns the configured sampling temperature.
func (c *Client) Temperature() float64 { return c.cfg.Temperature }

// chatMessage is one entry in a chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletion sends a system+user exchange and returns the assistant text.
func (c *Client) ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if !c.Ready() {
		return "", fmt.Errorf("openai: client not configured")
	}

	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	reqBody := map[string]any{
		"model":       c.cfg.Model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if errPost := c.post(ctx, "/chat/completions", reqBody, &parsed); errPost != nil {
		return "", errPost
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: empty completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// GenerateImage requests one square image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.Ready() {
		return "", fmt.Errorf("openai: client not configured")
	}

	reqBody := map[string]any{
		"model":   imageModel,
		"prompt":  prompt,
		"size":    "1024x1024",
		"quality": "standard",
		"n":       1,
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if errPost := c.post(ctx, "/images/generations", reqBody, &parsed); errPost != nil {
		return "", errPost
	}
	if len(parsed.Data) == 0 || strings.TrimSpace(parsed.Data[0].URL) == "" {
		return "", fmt.Errorf("openai: no image url in response")
	}
	return parsed.Data[0].URL, nil
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, errMarshal := json.Marshal(body)
	if errMarshal != nil {
		return fmt.Errorf("openai: marshal request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if errReq != nil {
		return fmt.Errorf("openai: build request: %w", errReq)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("openai: request failed: %w", errDo)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if errDecode := json.NewDecoder(resp.Body).Decode(out); errDecode != nil {
		return fmt.Errorf("openai: decode response: %w", errDecode)
	}
	return nil
}
