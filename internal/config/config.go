package config

import (
	"os"
	"strings"
)

// DefaultMaxUploadBytes is the upload size ceiling: 8 MiB.
const DefaultMaxUploadBytes = 8 << 20

type Config struct {
	ListenAddr     string
	DBPath         string
	CORSOrigins    []string
	PublicBaseURL  string
	MaxUploadBytes int64
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("FLIPBOOK_LISTEN_ADDR", ":4000"),
		DBPath:         getEnv("FLIPBOOK_DB_PATH", "/data/flipbook.db"),
		CORSOrigins:    getEnvList("FLIPBOOK_CORS_ORIGINS", []string{"*"}),
		PublicBaseURL:  getEnv("FLIPBOOK_PUBLIC_BASE_URL", ""),
		MaxUploadBytes: int64(getEnvInt("FLIPBOOK_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var result int
	for _, c := range v {
		if c < '0' || c > '9' {
			return defaultValue
		}
		result = result*10 + int(c-'0')
	}
	return result
}

// getEnvList splits a comma-separated env var, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
