package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
	"github.com/medassist-app/medassist/internal/observability/metrics"
)

// maxUploadBytes caps report and image uploads.
const maxUploadBytes = 20 << 20

type Router struct {
	service string

	chat      ports.ChatAssistant
	extractor ports.ReportExtractor
	reports   ports.ReportTranslator
	analyzer  ports.ImageAnalyzer
	locator   ports.HospitalLocator
	sessions  ports.SessionStore
	storage   ports.ObjectStorage
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	service string,
	chat ports.ChatAssistant,
	extractor ports.ReportExtractor,
	reports ports.ReportTranslator,
	analyzer ports.ImageAnalyzer,
	locator ports.HospitalLocator,
	sessions ports.SessionStore,
	storage ports.ObjectStorage,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		service:   service,
		chat:      chat,
		extractor: extractor,
		reports:   reports,
		analyzer:  analyzer,
		locator:   locator,
		sessions:  sessions,
		storage:   storage,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/chat", rt.handleChat)
	mux.HandleFunc("/v1/sessions/", rt.handleSession)
	mux.HandleFunc("/v1/reports/extract", rt.handleExtractReport)
	mux.HandleFunc("/v1/reports/translate", rt.handleTranslateReport)
	mux.HandleFunc("/v1/images/analyze", rt.handleAnalyzeImage)
	mux.HandleFunc("/v1/hospitals/search", rt.handleHospitalSearch)

	var handler http.Handler = rt.metrics.Middleware(rt.service, mux)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		Translate bool   `json:"translate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	reply, err := rt.chat.Respond(r.Context(), req.SessionID, req.Message, req.Translate)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	outcome := "ok"
	if strings.HasPrefix(reply.Reply, "Error: ") {
		outcome = "provider_error"
	}
	rt.metrics.RecordChatTurn(rt.service, outcome)
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	sessionID, action, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	switch {
	case action == "messages" && r.Method == http.MethodGet:
		rt.listSessionMessages(w, r, sessionID)
	case action == "language" && r.Method == http.MethodPut:
		rt.setSessionLanguage(w, r, sessionID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) listSessionMessages(w http.ResponseWriter, r *http.Request, sessionID string) {
	if _, err := rt.sessions.GetSession(r.Context(), sessionID); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	messages, err := rt.sessions.ListMessages(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (rt *Router) setSessionLanguage(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if _, ok := domain.LanguageByCode(req.Code); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported language code"})
		return
	}

	if err := rt.sessions.SetLanguage(r.Context(), sessionID, req.Code); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleExtractReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc := &domain.Document{
		ID:       uuid.NewString(),
		Filename: fileHeader.Filename,
		Kind:     domain.KindFromFilename(fileHeader.Filename),
	}
	doc.StoragePath = doc.ID + filepath.Ext(fileHeader.Filename)

	if err := rt.storage.Save(r.Context(), doc.StoragePath, file); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// Uploads are transient, kept only for the duration of the request.
	defer rt.storage.Remove(r.Context(), doc.StoragePath)

	text := rt.extractor.Extract(r.Context(), doc)
	rt.metrics.RecordExtraction(rt.service, string(doc.Kind), pipelineOutcome(text))
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (rt *Router) handleTranslateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	lang, ok := domain.LanguageByCode(req.Language)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported language code"})
		return
	}

	translated := rt.reports.Translate(r.Context(), req.Text, lang.Code, lang.Name)
	rt.metrics.RecordTranslation(rt.service, lang.Code)
	writeJSON(w, http.StatusOK, map[string]string{"text": translated})
}

func (rt *Router) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	modality := strings.TrimSpace(r.FormValue("modality"))
	if modality == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "modality is required"})
		return
	}

	destCode, destName := "", ""
	if language := strings.TrimSpace(r.FormValue("language")); language != "" {
		lang, ok := domain.LanguageByCode(language)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported language code"})
			return
		}
		destCode, destName = lang.Code, lang.Name
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read uploaded file"})
		return
	}

	result := rt.analyzer.Analyze(r.Context(), image, domain.ImageModality(modality), destCode, destName)
	rt.metrics.RecordAnalysis(rt.service, modality, pipelineOutcome(result))
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (rt *Router) handleHospitalSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address query parameter is required"})
		return
	}

	coords, err := rt.locator.Locate(r.Context(), address)
	if err != nil {
		outcome := "error"
		if domain.IsKind(err, domain.ErrGeocoding) {
			outcome = "not_found"
		}
		rt.metrics.RecordGeocodeLookup(rt.service, outcome)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.metrics.RecordGeocodeLookup(rt.service, "ok")
	writeJSON(w, http.StatusOK, map[string]any{
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
		"maps_url":  rt.locator.SearchLink(address),
	})
}

// pipelineOutcome classifies a never-fails pipeline result for metrics. The
// pipeline reports its own failures inside the returned text.
func pipelineOutcome(text string) string {
	if strings.HasPrefix(text, "Error") {
		return "error"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
