package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds everything the process needs, resolved once at startup.
// A Config that fails validation is never handed out.
type Config struct {
	Port string

	SupabaseURL        string
	SupabaseServiceKey string

	GeminiAPIKey        string
	GeminiModel         string
	GeminiModelFallback string

	AllowedOrigins []string
	Environment    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                getenv("PORT", "8080"),
		SupabaseURL:         strings.TrimSpace(os.Getenv("SUPABASE_DB_URL")),
		SupabaseServiceKey:  strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_ROLE_KEY")),
		GeminiAPIKey:        firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		GeminiModel:         getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiModelFallback: getenv("GEMINI_MODEL_FALLBACK", "gemini-2.0-flash"),
		AllowedOrigins:      splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		Environment:         getenv("APP_ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"SUPABASE_DB_URL", c.SupabaseURL},
		{"SUPABASE_SERVICE_ROLE_KEY", c.SupabaseServiceKey},
		{"GEMINI_API_KEY", c.GeminiAPIKey},
		{"GEMINI_MODEL", c.GeminiModel},
		{"GEMINI_MODEL_FALLBACK", c.GeminiModelFallback},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required and cannot be empty", field.name)
		}
	}

	if _, err := c.DSN(); err != nil {
		return err
	}
	return nil
}

// DSN combines the store URL with the service-role credential. The credential
// lives in its own variable so it can be rotated without touching the URL.
func (c *Config) DSN() (string, error) {
	u, err := url.Parse(c.SupabaseURL)
	if err != nil {
		return "", fmt.Errorf("SUPABASE_DB_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("SUPABASE_DB_URL: unsupported scheme %q", u.Scheme)
	}

	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.SupabaseServiceKey)

	return u.String(), nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-blank of the given variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
