package ports

import (
	"context"

	"github.com/medassist-app/medassist/internal/core/domain"
)

// ReportExtractor is the inbound contract for document text extraction.
// It never fails: every error path degrades to a displayable string, so
// the returned value may itself be an error description.
type ReportExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) string
}

// ReportTranslator simplifies medical text and renders it in the
// destination language. It never fails: the worst case is the original
// text returned verbatim.
type ReportTranslator interface {
	Translate(ctx context.Context, text, destCode, destName string) string
}

// ImageAnalyzer produces a narrative description of a medical image.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, modality domain.ImageModality, destCode, destName string) string
}

// ChatReply is the assistant's next turn, optionally accompanied by a
// translation into the session's preferred language.
type ChatReply struct {
	SessionID       string `json:"session_id"`
	Reply           string `json:"reply"`
	TranslatedReply string `json:"translated_reply,omitempty"`
}

// ChatAssistant is the inbound contract for the conversational assistant.
// Provider failures surface as a textual reply, not as an error; the error
// return covers session-store failures only.
type ChatAssistant interface {
	Respond(ctx context.Context, sessionID, message string, translate bool) (ChatReply, error)
}

// HospitalLocator resolves a place label to coordinates and builds an
// outbound maps-search link for hospitals near it.
type HospitalLocator interface {
	Locate(ctx context.Context, address string) (*domain.Coordinates, error)
	SearchLink(label string) string
}
