package ports

import (
	"context"
	"io"

	"github.com/medassist-app/medassist/internal/core/domain"
)

// CompletionMessage is one role-tagged turn sent to a completion provider.
// A non-empty ImageDataURI is transmitted as a typed image part alongside
// the text part.
type CompletionMessage struct {
	Role         domain.MessageRole
	Text         string
	ImageDataURI string
}

// CompletionRequest describes a single chat/vision completion call.
type CompletionRequest struct {
	Model       string
	Messages    []CompletionMessage
	Temperature float64
	MaxTokens   int
}

// CompletionClient is the uniform gateway to a remote completion service.
// Exactly one outbound call per invocation; callers own any retry policy.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Translator performs machine translation between two-letter language codes.
// Source may be domain.LanguageAuto for automatic detection.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, destLang string) (string, error)
}

// PDFTextReader extracts the text layer of a stored PDF, one string per
// page in page order. A page without a text layer yields an empty string.
type PDFTextReader interface {
	ReadPages(key string) ([]string, error)
}

// ImageTranscoder normalizes raster image bytes for vision submission:
// any alpha channel is flattened onto an opaque background and the result
// is re-encoded as JPEG.
type ImageTranscoder interface {
	ToJPEG(data []byte) ([]byte, error)
}

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

// ObjectStorage holds uploaded documents for the duration of one request.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// SessionStore persists per-session conversation state. Transcripts are
// append-only and scoped to a single session.
type SessionStore interface {
	EnsureSession(ctx context.Context, id string) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	SetLanguage(ctx context.Context, id, code string) error
	NextTurn(ctx context.Context, id string) (int, error)
	AppendMessage(ctx context.Context, message domain.ChatMessage) error
	ListMessages(ctx context.Context, id string) ([]domain.ChatMessage, error)
}
