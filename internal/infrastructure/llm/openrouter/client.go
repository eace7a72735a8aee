package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. One
// client per credential slot: chat, report-extraction vision, and
// simplification are billed and rate-limited independently upstream.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

// Complete issues exactly one completion request. Callers own retry policy.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	payload := map[string]any{
		"model":       req.Model,
		"messages":    encodeMessages(req.Messages),
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, "/chat/completions", payload, &response, "complete"); err != nil {
		return "", wrapProviderError("complete", err)
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrProvider, "complete", fmt.Errorf("empty choices in completion response"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func encodeMessages(messages []ports.CompletionMessage) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		if m.ImageDataURI == "" {
			out = append(out, wireMessage{Role: string(m.Role), Content: m.Text})
			continue
		}
		out = append(out, wireMessage{
			Role: string(m.Role),
			Content: []contentPart{
				{Type: "text", Text: m.Text},
				{Type: "image_url", ImageURL: &imageURLPart{URL: m.ImageDataURI}},
			},
		})
	}
	return out
}
