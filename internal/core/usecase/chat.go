package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

// ChatUseCase produces the next assistant turn for a session. The fixed
// system instruction is prepended on every call and never stored in the
// transcript. Provider failures come back as a textual reply, so the UI
// always has something to render; only session-store failures error out.
type ChatUseCase struct {
	sessions   ports.SessionStore
	completer  ports.CompletionClient
	completion CompletionConfig
	reports    ports.ReportTranslator
}

func NewChatUseCase(
	sessions ports.SessionStore,
	completer ports.CompletionClient,
	completion CompletionConfig,
	reports ports.ReportTranslator,
) *ChatUseCase {
	return &ChatUseCase{
		sessions:   sessions,
		completer:  completer,
		completion: completion,
		reports:    reports,
	}
}

func (uc *ChatUseCase) Respond(ctx context.Context, sessionID, message string, translate bool) (ports.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ports.ChatReply{}, domain.WrapError(domain.ErrInvalidInput, "chat respond", fmt.Errorf("empty message"))
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := uc.sessions.EnsureSession(ctx, sessionID)
	if err != nil {
		return ports.ChatReply{}, fmt.Errorf("ensure session: %w", err)
	}
	turn, err := uc.sessions.NextTurn(ctx, sessionID)
	if err != nil {
		return ports.ChatReply{}, fmt.Errorf("next turn: %w", err)
	}
	if err := uc.sessions.AppendMessage(ctx, domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   message,
		Turn:      turn,
	}); err != nil {
		return ports.ChatReply{}, fmt.Errorf("append user message: %w", err)
	}

	history, err := uc.sessions.ListMessages(ctx, sessionID)
	if err != nil {
		return ports.ChatReply{}, fmt.Errorf("list messages: %w", err)
	}

	reply, completeErr := uc.completer.Complete(ctx, ports.CompletionRequest{
		Model:       uc.completion.Model,
		Messages:    historyWithSystemPrompt(history),
		Temperature: uc.completion.Temperature,
		MaxTokens:   uc.completion.MaxTokens,
	})
	if completeErr != nil {
		return ports.ChatReply{
			SessionID: sessionID,
			Reply:     "Error: " + completeErr.Error(),
		}, nil
	}

	if err := uc.sessions.AppendMessage(ctx, domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Turn:      turn,
	}); err != nil {
		return ports.ChatReply{}, fmt.Errorf("append assistant message: %w", err)
	}

	out := ports.ChatReply{SessionID: sessionID, Reply: reply}
	if translate && session.Language != domain.LanguageEnglish {
		lang, ok := domain.LanguageByCode(session.Language)
		if ok {
			out.TranslatedReply = uc.reports.Translate(ctx, reply, lang.Code, lang.Name)
		}
	}
	return out, nil
}

func historyWithSystemPrompt(history []domain.ChatMessage) []ports.CompletionMessage {
	messages := make([]ports.CompletionMessage, 0, len(history)+1)
	messages = append(messages, ports.CompletionMessage{
		Role: domain.RoleSystem,
		Text: chatSystemPrompt,
	})
	for _, msg := range history {
		messages = append(messages, ports.CompletionMessage{
			Role: msg.Role,
			Text: msg.Content,
		})
	}
	return messages
}
