package usecase

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

const rateLimitExhaustedMessage = "Error: Rate limit exceeded for free model. Please try again in a few minutes, or consider upgrading to a paid plan for higher limits."

// CompletionConfig pins the model and sampling parameters for one logical
// purpose; each use case gets its own.
type CompletionConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// RetryPolicy is the bounded retry loop for vision extraction. The delay
// function is injectable so tests never sleep for real.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) normalize() RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = time.Second
	}
	if out.Sleep == nil {
		out.Sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}
	return out
}

// ExtractReportUseCase turns an uploaded document into plain text: PDFs
// through the local text-layer reader, images through vision OCR. It never
// fails outward; every error path degrades to a displayable string, so the
// returned value doubles as the error channel. Callers that need to
// distinguish success programmatically must inspect the text.
type ExtractReportUseCase struct {
	storage    ports.ObjectStorage
	pdfReader  ports.PDFTextReader
	transcoder ports.ImageTranscoder
	vision     ports.CompletionClient
	completion CompletionConfig
	retry      RetryPolicy
}

func NewExtractReportUseCase(
	storage ports.ObjectStorage,
	pdfReader ports.PDFTextReader,
	transcoder ports.ImageTranscoder,
	vision ports.CompletionClient,
	completion CompletionConfig,
	retry RetryPolicy,
) *ExtractReportUseCase {
	return &ExtractReportUseCase{
		storage:    storage,
		pdfReader:  pdfReader,
		transcoder: transcoder,
		vision:     vision,
		completion: completion,
		retry:      retry.normalize(),
	}
}

func (uc *ExtractReportUseCase) Extract(ctx context.Context, doc *domain.Document) string {
	if doc.Kind == domain.KindPDF {
		return uc.extractPDF(doc)
	}
	return uc.extractImage(ctx, doc)
}

func (uc *ExtractReportUseCase) extractPDF(doc *domain.Document) string {
	pages, err := uc.pdfReader.ReadPages(doc.StoragePath)
	if err != nil {
		return "Error extracting text from PDF: " + err.Error()
	}
	return strings.TrimSpace(strings.Join(pages, "\n"))
}

func (uc *ExtractReportUseCase) extractImage(ctx context.Context, doc *domain.Document) string {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return imageExtractionFailure(err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return imageExtractionFailure(err)
	}

	jpegBytes, err := uc.transcoder.ToJPEG(raw)
	if err != nil {
		return imageExtractionFailure(err)
	}

	request := ports.CompletionRequest{
		Model: uc.completion.Model,
		Messages: []ports.CompletionMessage{
			{
				Role:         domain.RoleUser,
				Text:         extractionPrompt,
				ImageDataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes),
			},
		},
		Temperature: uc.completion.Temperature,
		MaxTokens:   uc.completion.MaxTokens,
	}

	text, err := uc.completeWithRetry(ctx, request)
	if err != nil {
		if domain.IsKind(err, domain.ErrRateLimited) {
			return rateLimitExhaustedMessage
		}
		return imageExtractionFailure(err)
	}
	return text
}

// completeWithRetry retries only rate-limited attempts, with exponential
// backoff measured from the attempt index. Any other failure aborts
// immediately; there is no local OCR fallback.
func (uc *ExtractReportUseCase) completeWithRetry(ctx context.Context, request ports.CompletionRequest) (string, error) {
	backoff := uc.retry.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= uc.retry.MaxAttempts; attempt++ {
		text, err := uc.vision.Complete(ctx, request)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !domain.IsKind(err, domain.ErrRateLimited) || attempt == uc.retry.MaxAttempts {
			return "", err
		}

		slog.Warn("vision_extract_retry",
			"attempt", attempt,
			"max_attempts", uc.retry.MaxAttempts,
			"backoff_ms", float64(backoff.Microseconds())/1000.0,
			"error", err,
		)
		if sleepErr := uc.retry.Sleep(ctx, backoff); sleepErr != nil {
			return "", err
		}
		backoff *= 2
	}
	return "", lastErr
}

func imageExtractionFailure(err error) string {
	return "Error: Could not extract text from image. LLM vision failed: " + err.Error() + ". Please try a different image or ensure the image contains clear text."
}
