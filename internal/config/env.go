package config

import (
	"os"
	"strings"
	"time"
)

// Env holds process settings taken from the environment (and .env, which the
// binaries load first).
type Env struct {
	Port           string
	Production     bool
	LogLevel       string
	LogFormat      string
	SettingsFile   string
	ScenarioDB     string
	ResultCacheTTL time.Duration
	CORSOrigins    []string
	StaticDir      string
	PresetsDir     string
}

// FromEnv reads Env with defaults for everything.
func FromEnv() Env {
	ttl, err := time.ParseDuration(getEnv("RESULT_CACHE_TTL", "1h"))
	if err != nil || ttl <= 0 {
		ttl = time.Hour
	}
	return Env{
		Port:           getEnv("API_PORT", "8080"),
		Production:     getEnv("API_ENV", "") == "production",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		SettingsFile:   getEnv("SETTINGS_FILE", "./data/settings.json"),
		ScenarioDB:     getEnv("SCENARIO_DB", "./data/scenarios.db"),
		ResultCacheTTL: ttl,
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		StaticDir:      getEnv("STATIC_DIR", "./web/dist"),
		PresetsDir:     getEnv("PRESETS_DIR", "./examples"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
