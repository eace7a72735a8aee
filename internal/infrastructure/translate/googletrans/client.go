package googletrans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/infrastructure/resilience"
)

// Client translates text through the public Google translate endpoint.
// The endpoint is keyless; requests go through the resilience executor so
// a misbehaving upstream trips the circuit instead of hanging every
// translation in the fallback chain.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithExecutor(baseURL, nil)
}

func NewWithExecutor(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Translate(ctx context.Context, text, sourceLang, destLang string) (string, error) {
	if sourceLang == "" {
		sourceLang = domain.LanguageAuto
	}

	var translated string
	call := func(ctx context.Context) error {
		out, err := c.translateOnce(ctx, text, sourceLang, destLang)
		if err != nil {
			return err
		}
		translated = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "translate", call, classifyTranslateError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrProvider, "translate", err)
	}
	return translated, nil
}

func (c *Client) translateOnce(ctx context.Context, text, sourceLang, destLang string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", sourceLang)
	query.Set("tl", destLang)
	query.Set("dt", "t")
	query.Set("q", text)

	endpoint := c.baseURL + "/translate_a/single?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("translate status: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	return joinSegments(payload)
}

// joinSegments flattens the translate response: the first element is a
// list of [translatedSegment, sourceSegment, ...] tuples.
func joinSegments(payload []any) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var builder strings.Builder
	for _, segment := range segments {
		tuple, ok := segment.([]any)
		if !ok || len(tuple) == 0 {
			continue
		}
		if part, ok := tuple[0].(string); ok {
			builder.WriteString(part)
		}
	}

	result := builder.String()
	if result == "" {
		return "", fmt.Errorf("translate response contained no segments")
	}
	return result, nil
}

func classifyTranslateError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	// Caller-driven cancellation is not the upstream's fault; everything
	// else counts against the breaker. No retry either way: the report
	// pipeline has its own fallback chain.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
