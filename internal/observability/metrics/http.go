package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionsTotal    *prometheus.CounterVec
	translationsTotal   *prometheus.CounterVec
	analysesTotal       *prometheus.CounterVec
	chatTurnsTotal      *prometheus.CounterVec
	geocodeLookupsTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medassist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medassist",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "extraction",
			Name:      "documents_total",
			Help:      "Total document text extractions by kind and outcome.",
		},
		[]string{"service", "kind", "outcome"},
	)
	translationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "translation",
			Name:      "reports_total",
			Help:      "Total report simplification requests by destination language.",
		},
		[]string{"service", "dest_lang"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "analysis",
			Name:      "images_total",
			Help:      "Total medical image analyses by modality and outcome.",
		},
		[]string{"service", "modality", "outcome"},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed chat turns by outcome.",
		},
		[]string{"service", "outcome"},
	)
	geocodeLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medassist",
			Subsystem: "geocode",
			Name:      "lookups_total",
			Help:      "Total address geocoding lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		translationsTotal,
		analysesTotal,
		chatTurnsTotal,
		geocodeLookupsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		extractionsTotal:    extractionsTotal,
		translationsTotal:   translationsTotal,
		analysesTotal:       analysesTotal,
		chatTurnsTotal:      chatTurnsTotal,
		geocodeLookupsTotal: geocodeLookupsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-session paths so label cardinality stays
// bounded.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/sessions/") {
		rest := strings.TrimPrefix(path, "/v1/sessions/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/sessions/{session_id}" + rest[idx:]
		}
		return "/v1/sessions/{session_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordExtraction(service, kind, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.extractionsTotal.WithLabelValues(service, kind, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordTranslation(service, destLang string) {
	if destLang == "" {
		destLang = "unknown"
	}
	m.translationsTotal.WithLabelValues(service, destLang).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysis(service, modality, outcome string) {
	if modality == "" {
		modality = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysesTotal.WithLabelValues(service, modality, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordChatTurn(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.chatTurnsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordGeocodeLookup(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.geocodeLookupsTotal.WithLabelValues(service, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
