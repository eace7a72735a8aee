package usecase

import (
	"context"
	"encoding/base64"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

// AnalyzeImageUseCase produces a narrative description of a medical image
// via a single vision completion. Unlike report extraction there is no
// retry here: a rate-limited analysis fails like any other failure.
type AnalyzeImageUseCase struct {
	vision     ports.CompletionClient
	completion CompletionConfig
	reports    ports.ReportTranslator
}

func NewAnalyzeImageUseCase(
	vision ports.CompletionClient,
	completion CompletionConfig,
	reports ports.ReportTranslator,
) *AnalyzeImageUseCase {
	return &AnalyzeImageUseCase{
		vision:     vision,
		completion: completion,
		reports:    reports,
	}
}

func (uc *AnalyzeImageUseCase) Analyze(ctx context.Context, image []byte, modality domain.ImageModality, destCode, destName string) string {
	request := ports.CompletionRequest{
		Model: uc.completion.Model,
		Messages: []ports.CompletionMessage{
			{
				Role:         domain.RoleUser,
				Text:         modalityPrompt(modality),
				ImageDataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
			},
		},
		Temperature: uc.completion.Temperature,
		MaxTokens:   uc.completion.MaxTokens,
	}

	reply, err := uc.vision.Complete(ctx, request)
	if err != nil {
		return "Error analyzing image: " + err.Error()
	}

	if destCode != "" {
		return uc.reports.Translate(ctx, reply, destCode, destName)
	}
	return reply
}
