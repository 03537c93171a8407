package llm

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"thoughtforest/internal/config"

	"github.com/go-resty/resty/v2"
)

// Gateway turns journal text into a bulleted summary.
type Gateway interface {
	Summarize(ctx context.Context, text string, bullets int) (string, error)
}

// OpenAI calls the chat completions API.
type OpenAI struct {
	client *resty.Client
	model  string
}

// NewOpenAI creates a new OpenAI client from cfg.
func NewOpenAI(cfg config.OpenAIConfig) *OpenAI {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey).
		SetTimeout(cfg.Timeout)

	return &OpenAI{client: c, model: cfg.Model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Prompt builds the instruction sent for text.
func Prompt(text string, bullets int) string {
	return "Summarize the following text in " + strconv.Itoa(bullets) +
		" bullet point lines, written from a first-person journal point of view:\n\n" +
		text + "\n\nSummary:"
}

// Summarize asks for exactly bullets bullet points at temperature 0.
func (o *OpenAI) Summarize(ctx context.Context, text string, bullets int) (string, error) {
	req := chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: Prompt(text, bullets)}},
		Temperature: 0,
	}

	var out chatResponse
	var apiErr errorResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode(),
			Type:       apiErr.Error.Type,
			Message:    apiErr.Error.Message,
		}
	}

	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
