package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	// Optional durable session store. Empty DSN keeps sessions in process.
	PostgresDSN string

	OpenRouterBaseURL string
	ChatModel         string
	VisionModel       string
	SimplifyModel     string

	// Three independent credential slots: the capabilities are billed and
	// rate-limited separately upstream. Resolved secrets-file-first, then
	// from the environment.
	ChatAPIKey   string
	VisionAPIKey string
	ReportAPIKey string

	TranslateBaseURL string

	NominatimBaseURL   string
	NominatimUserAgent string

	StoragePath string

	ChatTemperature     float64
	ChatMaxTokens       int
	ExtractTemperature  float64
	ExtractMaxTokens    int
	SimplifyTemperature float64
	SimplifyMaxTokens   int
	AnalyzeTemperature  float64
	AnalyzeMaxTokens    int

	ExtractRetryAttempts int
	ExtractRetryBackoff  time.Duration
}

func Load() Config {
	secrets := loadSecrets(os.Getenv("SECRETS_FILE"))

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		OpenRouterBaseURL: mustEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		ChatModel:         mustEnv("CHAT_MODEL", "meta-llama/llama-3.2-11b-vision-instruct"),
		VisionModel:       mustEnv("VISION_MODEL", "meta-llama/llama-4-scout:free"),
		SimplifyModel:     mustEnv("SIMPLIFY_MODEL", "google/gemini-2.0-flash-exp:free"),

		ChatAPIKey:   secrets.resolve("OPENROUTER_API_KEY"),
		VisionAPIKey: secrets.resolve("OPENROUTER_API_KEY_VISION"),
		ReportAPIKey: secrets.resolve("OPENROUTER_REPORT_API_KEY"),

		TranslateBaseURL: mustEnv("TRANSLATE_BASE_URL", "https://translate.googleapis.com"),

		NominatimBaseURL:   mustEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: mustEnv("NOMINATIM_USER_AGENT", "medassist"),

		StoragePath: mustEnv("STORAGE_PATH", "./data/uploads"),

		ChatTemperature:     mustEnvFloat("CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:       mustEnvInt("CHAT_MAX_TOKENS", 512),
		ExtractTemperature:  mustEnvFloat("EXTRACT_TEMPERATURE", 0.1),
		ExtractMaxTokens:    mustEnvInt("EXTRACT_MAX_TOKENS", 1024),
		SimplifyTemperature: mustEnvFloat("SIMPLIFY_TEMPERATURE", 0.5),
		SimplifyMaxTokens:   mustEnvInt("SIMPLIFY_MAX_TOKENS", 1024),
		AnalyzeTemperature:  mustEnvFloat("ANALYZE_TEMPERATURE", 0.7),
		AnalyzeMaxTokens:    mustEnvInt("ANALYZE_MAX_TOKENS", 512),

		ExtractRetryAttempts: mustEnvInt("EXTRACT_RETRY_ATTEMPTS", 3),
		ExtractRetryBackoff:  mustEnvDuration("EXTRACT_RETRY_BACKOFF", time.Second),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
