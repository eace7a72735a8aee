package openrouter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/medassist-app/medassist/internal/core/domain"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openrouter status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("openrouter %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("openrouter %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// IsRateLimit is the single place that decides whether a provider failure
// means rate limiting. It prefers the structured status code and falls back
// to a textual heuristic, so swapping providers only touches this function.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate")
}

func wrapProviderError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimit(err) {
		return domain.WrapError(domain.ErrRateLimited, operation, err)
	}
	return domain.WrapError(domain.ErrProvider, operation, err)
}
