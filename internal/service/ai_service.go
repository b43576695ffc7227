package service

import (
	"brainer_backend/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	config config.AIConfig
	client *resty.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &AIService{config: cfg, client: client}
}

// Enabled reports whether an endpoint is configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.config.BaseURL != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends one system + user exchange and returns the assistant reply.
func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("AI endpoint not configured")
	}

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var result ChatCompletionResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode(), result.Error.Message)
		}
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
