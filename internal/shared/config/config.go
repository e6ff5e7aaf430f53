package config

import (
	"log"
	"os"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	RegistryAPIURL  string
	RegistryAPIKey  string
	AuthAPIURL      string
	DatabaseURL     string
	Env             string
	SSOClientID     string
	SSOClientSecret string
	SSOAuthURL      string
	SSOTokenURL     string
	SSOUserInfoURL  string
	SSORedirectURL  string
	UIRedirectURL   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	registryURL := getEnv("REGISTRY_API_URL", "")
	if env == "production" && registryURL == "" {
		log.Printf("REGISTRY_API_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8081")),
		RegistryAPIURL:  registryURL,
		RegistryAPIKey:  getEnv("REGISTRY_API_KEY", ""),
		AuthAPIURL:      getEnv("AUTH_API_URL", ""),
		DatabaseURL:     dbURL,
		Env:             env,
		SSOClientID:     getEnv("SSO_CLIENT_ID", ""),
		SSOClientSecret: getEnv("SSO_CLIENT_SECRET", ""),
		SSOAuthURL:      getEnv("SSO_AUTH_URL", ""),
		SSOTokenURL:     getEnv("SSO_TOKEN_URL", ""),
		SSOUserInfoURL:  getEnv("SSO_USERINFO_URL", ""),
		SSORedirectURL:  getEnv("SSO_REDIRECT_URL", ""),
		UIRedirectURL:   getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
