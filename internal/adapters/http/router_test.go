package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
	"github.com/medassist-app/medassist/internal/observability/metrics"
)

type stubChat struct {
	reply ports.ChatReply
	err   error
}

func (s *stubChat) Respond(_ context.Context, sessionID, _ string, _ bool) (ports.ChatReply, error) {
	if s.err != nil {
		return ports.ChatReply{}, s.err
	}
	out := s.reply
	if out.SessionID == "" {
		out.SessionID = sessionID
	}
	return out, nil
}

type stubExtractor struct {
	text    string
	lastDoc *domain.Document
}

func (s *stubExtractor) Extract(_ context.Context, doc *domain.Document) string {
	s.lastDoc = doc
	return s.text
}

type stubReportTranslator struct {
	result   string
	lastText string
	lastCode string
}

func (s *stubReportTranslator) Translate(_ context.Context, text, destCode, _ string) string {
	s.lastText = text
	s.lastCode = destCode
	return s.result
}

type stubAnalyzer struct {
	result       string
	lastModality domain.ImageModality
	lastDestCode string
	lastImage    []byte
}

func (s *stubAnalyzer) Analyze(_ context.Context, image []byte, modality domain.ImageModality, destCode, _ string) string {
	s.lastImage = image
	s.lastModality = modality
	s.lastDestCode = destCode
	return s.result
}

type stubLocator struct {
	coords *domain.Coordinates
	err    error
}

func (s *stubLocator) Locate(_ context.Context, _ string) (*domain.Coordinates, error) {
	return s.coords, s.err
}

func (s *stubLocator) SearchLink(label string) string {
	return "https://maps.example/" + label
}

type stubSessionStore struct {
	languages map[string]string
	messages  []domain.ChatMessage
}

func (s *stubSessionStore) EnsureSession(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id, Language: domain.LanguageEnglish}, nil
}

func (s *stubSessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	if _, ok := s.languages[id]; !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id %q", id))
	}
	return &domain.Session{ID: id, Language: s.languages[id]}, nil
}

func (s *stubSessionStore) SetLanguage(_ context.Context, id, code string) error {
	if _, ok := s.languages[id]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "set language", fmt.Errorf("id %q", id))
	}
	s.languages[id] = code
	return nil
}

func (s *stubSessionStore) NextTurn(_ context.Context, _ string) (int, error) { return 1, nil }

func (s *stubSessionStore) AppendMessage(_ context.Context, _ domain.ChatMessage) error { return nil }

func (s *stubSessionStore) ListMessages(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return s.messages, nil
}

type stubStorage struct {
	saved   map[string][]byte
	removed []string
}

func (s *stubStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[key] = raw
	return nil
}

func (s *stubStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.saved[key]
	if !ok {
		return nil, fmt.Errorf("no object %q", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *stubStorage) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

type routerFixture struct {
	chat      *stubChat
	extractor *stubExtractor
	reports   *stubReportTranslator
	analyzer  *stubAnalyzer
	locator   *stubLocator
	sessions  *stubSessionStore
	storage   *stubStorage
	handler   http.Handler
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		chat:      &stubChat{reply: ports.ChatReply{Reply: "chat reply"}},
		extractor: &stubExtractor{text: "extracted text"},
		reports:   &stubReportTranslator{result: "translated text"},
		analyzer:  &stubAnalyzer{result: "analysis result"},
		locator:   &stubLocator{coords: &domain.Coordinates{Latitude: 12.9, Longitude: 77.6}},
		sessions:  &stubSessionStore{languages: map[string]string{"s-1": "en"}},
		storage:   &stubStorage{},
	}
	router := NewRouter(
		"medassist-api-test",
		f.chat,
		f.extractor,
		f.reports,
		f.analyzer,
		f.locator,
		f.sessions,
		f.storage,
		metrics.NewHTTPServerMetrics("medassist-api-test"),
	)
	f.handler = router.Handler()
	return f
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", res.Body.String(), err)
	}
	return body
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %q: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestChatEndpoint(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"session_id":"s-1","message":"hello"}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["reply"] != "chat reply" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"  "}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSetSessionLanguage(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/sessions/s-1/language", strings.NewReader(`{"code":"hi"}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", res.Code, res.Body.String())
	}
	if f.sessions.languages["s-1"] != "hi" {
		t.Fatalf("language not updated: %v", f.sessions.languages)
	}
}

func TestSetSessionLanguageRejectsUnknownCode(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/sessions/s-1/language", strings.NewReader(`{"code":"fr"}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListSessionMessagesUnknownSession(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/missing/messages", nil)
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestExtractReportEndpoint(t *testing.T) {
	f := newRouterFixture()
	buf, contentType := multipartBody(t, "report.pdf", []byte("%PDF-1.4"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/extract", buf)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["text"] != "extracted text" {
		t.Fatalf("unexpected body %v", body)
	}
	if f.extractor.lastDoc == nil || f.extractor.lastDoc.Kind != domain.KindPDF {
		t.Fatalf("expected pdf document, got %+v", f.extractor.lastDoc)
	}
	if len(f.storage.saved) != 1 {
		t.Fatalf("expected upload saved once, got %d", len(f.storage.saved))
	}
	if len(f.storage.removed) != 1 {
		t.Fatalf("expected transient upload removed, got %v", f.storage.removed)
	}
}

func TestExtractReportRequiresFile(t *testing.T) {
	f := newRouterFixture()
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/extract", strings.NewReader("no file"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestTranslateReportEndpoint(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/translate", strings.NewReader(`{"text":"report text","language":"kn"}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["text"] != "translated text" {
		t.Fatalf("unexpected body %v", body)
	}
	if f.reports.lastText != "report text" || f.reports.lastCode != "kn" {
		t.Fatalf("unexpected translate call %q/%q", f.reports.lastText, f.reports.lastCode)
	}
}

func TestTranslateReportRejectsUnknownLanguage(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/translate", strings.NewReader(`{"text":"report","language":"xx"}`))
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAnalyzeImageEndpoint(t *testing.T) {
	f := newRouterFixture()
	buf, contentType := multipartBody(t, "scan.png", []byte("image bytes"), map[string]string{
		"modality": "X-ray",
		"language": "hi",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analyze", buf)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["result"] != "analysis result" {
		t.Fatalf("unexpected body %v", body)
	}
	if f.analyzer.lastModality != domain.ModalityXRay || f.analyzer.lastDestCode != "hi" {
		t.Fatalf("unexpected analyze call %q/%q", f.analyzer.lastModality, f.analyzer.lastDestCode)
	}
	if string(f.analyzer.lastImage) != "image bytes" {
		t.Fatalf("unexpected image payload %q", f.analyzer.lastImage)
	}
}

func TestAnalyzeImageRequiresModality(t *testing.T) {
	f := newRouterFixture()
	buf, contentType := multipartBody(t, "scan.png", []byte("image bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analyze", buf)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestHospitalSearch(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/hospitals/search?address=MG+Road", nil)
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["latitude"] != 12.9 || body["longitude"] != 77.6 {
		t.Fatalf("unexpected coordinates %v", body)
	}
	if body["maps_url"] != "https://maps.example/MG Road" {
		t.Fatalf("unexpected maps url %v", body["maps_url"])
	}
}

func TestHospitalSearchRequiresAddress(t *testing.T) {
	f := newRouterFixture()
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hospitals/search", nil))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestHospitalSearchNotResolvable(t *testing.T) {
	f := newRouterFixture()
	f.locator.coords = nil
	f.locator.err = domain.WrapError(domain.ErrGeocoding, "geocode", fmt.Errorf("no results"))
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hospitals/search?address=nowhere", nil))

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
