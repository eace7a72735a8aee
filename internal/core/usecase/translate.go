package usecase

import (
	"context"
	"log/slog"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

// TranslateReportUseCase simplifies medical text with a language model and
// renders it in the destination language. Simplification always targets
// plain English; the destination only matters for the machine-translation
// step. The two-tier fallback keeps the worst case a no-op: a transient
// simplification failure still delivers a translated report, and total
// failure returns the original text rather than an error message, because
// this is medical content the user needs regardless of processing quality.
type TranslateReportUseCase struct {
	simplifier ports.CompletionClient
	completion CompletionConfig
	translator ports.Translator
}

func NewTranslateReportUseCase(
	simplifier ports.CompletionClient,
	completion CompletionConfig,
	translator ports.Translator,
) *TranslateReportUseCase {
	return &TranslateReportUseCase{
		simplifier: simplifier,
		completion: completion,
		translator: translator,
	}
}

func (uc *TranslateReportUseCase) Translate(ctx context.Context, text, destCode, destName string) string {
	simplified, err := uc.simplify(ctx, text)
	if err == nil {
		if destCode == domain.LanguageEnglish {
			return simplified
		}
		translated, translateErr := uc.translator.Translate(ctx, simplified, domain.LanguageEnglish, destCode)
		if translateErr == nil {
			return translated
		}
		err = translateErr
	}

	slog.Warn("report_translate_fallback",
		"dest_lang", destCode,
		"dest_lang_name", destName,
		"error", err,
	)

	// Simplification assumed English input; it may not have run, so the
	// fallback translates the original text with automatic detection.
	if destCode != domain.LanguageEnglish {
		fallback, fallbackErr := uc.translator.Translate(ctx, text, domain.LanguageAuto, destCode)
		if fallbackErr == nil {
			return fallback
		}
		slog.Warn("report_translate_fallback_failed", "dest_lang", destCode, "error", fallbackErr)
	}
	return text
}

func (uc *TranslateReportUseCase) simplify(ctx context.Context, text string) (string, error) {
	return uc.simplifier.Complete(ctx, ports.CompletionRequest{
		Model: uc.completion.Model,
		Messages: []ports.CompletionMessage{
			{Role: domain.RoleUser, Text: buildSimplifyPrompt(text)},
		},
		Temperature: uc.completion.Temperature,
		MaxTokens:   uc.completion.MaxTokens,
	})
}
