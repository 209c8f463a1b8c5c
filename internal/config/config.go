package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string
	APIToken    string
	CatalogPath string
	Timezone    string

	RecommendProvider         string
	RecommendModel            string
	RecommendAPIKey           string
	RecommendBaseURL          string
	RecommendFallbackProvider string
	RecommendFallbackModel    string
	RecommendFallbackAPIKey   string
	RecommendStaticFallback   bool

	RefreshSchedule string
	SlackBotToken   string
	SlackChannel    string

	CORSOrigins       []string
	RateLimitRPS      float64
	RateLimitBurst    int
	TrustProxyHeaders bool

	// ThemeKeyPolicy and StaffKeyPolicy are "fold" or "preserve".
	ThemeKeyPolicy string
	StaffKeyPolicy string
}

func Load() Config {
	return Config{
		Port:        envInt("REVIEWLENS_PORT", 8760),
		NatsURL:     envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		APIToken:    envStr("REVIEWLENS_API_TOKEN", ""),
		CatalogPath: envStr("REVIEWLENS_CATALOG", ""),
		Timezone:    envStr("REVIEWLENS_TIMEZONE", ""),

		RecommendProvider:         envStr("RECOMMEND_PROVIDER", "ollama"),
		RecommendModel:            envStr("RECOMMEND_MODEL", ""),
		RecommendAPIKey:           envStr("RECOMMEND_API_KEY", ""),
		RecommendBaseURL:          envStr("RECOMMEND_BASE_URL", ""),
		RecommendFallbackProvider: envStr("RECOMMEND_FALLBACK_PROVIDER", ""),
		RecommendFallbackModel:    envStr("RECOMMEND_FALLBACK_MODEL", ""),
		RecommendFallbackAPIKey:   envStr("RECOMMEND_FALLBACK_API_KEY", ""),
		RecommendStaticFallback:   envBool("RECOMMEND_STATIC_FALLBACK", true),

		RefreshSchedule: envStr("REFRESH_SCHEDULE", ""),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_DIGEST_CHANNEL", ""),

		CORSOrigins:       envList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRPS:      envFloat("RATE_LIMIT_RPS", 0.5),
		RateLimitBurst:    envInt("RATE_LIMIT_BURST", 3),
		TrustProxyHeaders: envBool("TRUST_PROXY_HEADERS", false),

		ThemeKeyPolicy: envStr("THEME_KEY_POLICY", "fold"),
		StaffKeyPolicy: envStr("STAFF_KEY_POLICY", "preserve"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping blank entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
