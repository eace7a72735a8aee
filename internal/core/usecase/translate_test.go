package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type translateCall struct {
	text string
	src  string
	dest string
}

type fakeTranslator struct {
	results []completionResult
	calls   []translateCall
}

func (f *fakeTranslator) Translate(_ context.Context, text, sourceLang, destLang string) (string, error) {
	f.calls = append(f.calls, translateCall{text: text, src: sourceLang, dest: destLang})
	if len(f.results) == 0 {
		return "", errors.New("unexpected translate call")
	}
	out := f.results[0]
	f.results = f.results[1:]
	return out.text, out.err
}

func TestTranslateEnglishSkipsMachineTranslation(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{text: "Your blood count is a bit low."}}}
	translator := &fakeTranslator{}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{Model: "simplify-model", Temperature: 0.5, MaxTokens: 1024}, translator)

	got := uc.Translate(context.Background(), "Mild anemia observed.", "en", "English")

	if got != "Your blood count is a bit low." {
		t.Fatalf("unexpected result %q", got)
	}
	if len(translator.calls) != 0 {
		t.Fatalf("expected no translation for english, got %v", translator.calls)
	}
	if len(simplifier.requests) != 1 {
		t.Fatalf("expected one simplify call, got %d", len(simplifier.requests))
	}
	prompt := simplifier.requests[0].Messages[0].Text
	if !strings.HasPrefix(prompt, "Simplify the following medical report text") {
		t.Fatalf("unexpected simplify prompt %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Mild anemia observed.") {
		t.Fatalf("simplify prompt does not carry the report text: %q", prompt)
	}
}

func TestTranslateSendsSimplifiedTextFromEnglish(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{text: "simplified report"}}}
	translator := &fakeTranslator{results: []completionResult{{text: "अनुवादित रिपोर्ट"}}}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{}, translator)

	got := uc.Translate(context.Background(), "original report", "hi", "Hindi")

	if got != "अनुवादित रिपोर्ट" {
		t.Fatalf("unexpected result %q", got)
	}
	if len(translator.calls) != 1 {
		t.Fatalf("expected one translation, got %d", len(translator.calls))
	}
	call := translator.calls[0]
	if call.text != "simplified report" || call.src != "en" || call.dest != "hi" {
		t.Fatalf("unexpected translation call %+v", call)
	}
}

func TestTranslateFallsBackToOriginalOnSimplifyError(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{err: errors.New("model unavailable")}}}
	translator := &fakeTranslator{results: []completionResult{{text: "ಮೂಲ ವರದಿ"}}}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{}, translator)

	got := uc.Translate(context.Background(), "original report", "kn", "Kannada")

	if got != "ಮೂಲ ವರದಿ" {
		t.Fatalf("unexpected result %q", got)
	}
	if len(translator.calls) != 1 {
		t.Fatalf("expected one fallback translation, got %d", len(translator.calls))
	}
	call := translator.calls[0]
	if call.text != "original report" || call.src != "auto" || call.dest != "kn" {
		t.Fatalf("unexpected fallback call %+v", call)
	}
}

func TestTranslateFallsBackWhenTranslationFails(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{text: "simplified report"}}}
	translator := &fakeTranslator{results: []completionResult{
		{err: errors.New("translator 403")},
		{text: "fallback translation"},
	}}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{}, translator)

	got := uc.Translate(context.Background(), "original report", "ta", "Tamil")

	if got != "fallback translation" {
		t.Fatalf("unexpected result %q", got)
	}
	if len(translator.calls) != 2 {
		t.Fatalf("expected two translation attempts, got %d", len(translator.calls))
	}
	if translator.calls[0].text != "simplified report" || translator.calls[0].src != "en" {
		t.Fatalf("unexpected first call %+v", translator.calls[0])
	}
	if translator.calls[1].text != "original report" || translator.calls[1].src != "auto" {
		t.Fatalf("unexpected fallback call %+v", translator.calls[1])
	}
}

func TestTranslateReturnsOriginalWhenEverythingFails(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{err: errors.New("model unavailable")}}}
	translator := &fakeTranslator{results: []completionResult{{err: errors.New("translator down")}}}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{}, translator)

	original := "original report text"
	if got := uc.Translate(context.Background(), original, "te", "Telugu"); got != original {
		t.Fatalf("expected original text back, got %q", got)
	}
}

func TestTranslateEnglishSimplifyErrorReturnsOriginal(t *testing.T) {
	simplifier := &fakeCompletionClient{results: []completionResult{{err: errors.New("model unavailable")}}}
	translator := &fakeTranslator{}
	uc := NewTranslateReportUseCase(simplifier, CompletionConfig{}, translator)

	original := "original report text"
	if got := uc.Translate(context.Background(), original, "en", "English"); got != original {
		t.Fatalf("expected original text back, got %q", got)
	}
	if len(translator.calls) != 0 {
		t.Fatalf("expected no translation attempt for english, got %v", translator.calls)
	}
}
