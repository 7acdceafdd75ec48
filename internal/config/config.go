package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-badge/badge/internal/scheme"
)

// Authentication scheme constants
const (
	SchemeBasic = "basic"
	SchemeToken = "token"
)

// Cache backend constants
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// Scheme selection: "basic" or "token"
	AuthScheme string

	// Provider application credentials
	ClientID     string
	ClientSecret string
	Organization string
	Realm        string

	// Token provisioning (basic scheme only)
	TokenNote   string
	TokenURL    string
	TokenScopes []string

	// Identity provider API
	ProviderAPIURL             string
	ProviderTimeout            time.Duration
	ProviderInsecureSkipVerify bool
	ProviderAuthMode           string // Service auth toward the provider: "none", "simple", or "hmac"
	ProviderAuthSecret         string
	ProviderAuthHeader         string
	ProviderMaxRetries         int
	ProviderRetryDelay         time.Duration
	ProviderMaxRetryDelay      time.Duration

	// Outcome cache
	CacheBackend  string // "memory" or "redis"
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitEnabled           bool
	RateLimitRequestsPerMinute int
	RateLimitStore             string // "memory" or "redis"

	// Metrics
	MetricsEnabled bool
	MetricsToken   string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		AuthScheme: getEnv("AUTH_SCHEME", SchemeBasic),

		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		Organization: getEnv("ORGANIZATION", ""),
		Realm:        getEnv("REALM", ""),

		TokenNote:   getEnv("TOKEN_NOTE", ""),
		TokenURL:    getEnv("TOKEN_URL", ""),
		TokenScopes: getEnvSlice("TOKEN_SCOPES", nil),

		ProviderAPIURL:             getEnv("PROVIDER_API_URL", "https://api.github.com"),
		ProviderTimeout:            getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderInsecureSkipVerify: getEnvBool("PROVIDER_INSECURE_SKIP_VERIFY", false),
		ProviderAuthMode:           getEnv("PROVIDER_AUTH_MODE", "none"),
		ProviderAuthSecret:         getEnv("PROVIDER_AUTH_SECRET", ""),
		ProviderAuthHeader:         getEnv("PROVIDER_AUTH_HEADER", "X-API-Secret"),
		ProviderMaxRetries:         getEnvInt("PROVIDER_MAX_RETRIES", 3),
		ProviderRetryDelay:         getEnvDuration("PROVIDER_RETRY_DELAY", 1*time.Second),
		ProviderMaxRetryDelay:      getEnvDuration("PROVIDER_MAX_RETRY_DELAY", 10*time.Second),

		CacheBackend:  getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheSize:     getEnvInt("CACHE_SIZE", scheme.CacheSize),
		CacheTTL:      getEnvDuration("CACHE_TTL", scheme.CacheTTL),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitEnabled:           getEnvBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerMinute: getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitStore:             getEnv("RATE_LIMIT_STORE", CacheBackendMemory),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),
	}
}

// Validate checks cross-field consistency and reports every violation at
// once. The scheme-specific credential requirements are checked again by the
// scheme constructors; this catches misconfiguration before anything is
// wired.
func (c *Config) Validate() error {
	var violations []string

	switch c.AuthScheme {
	case SchemeBasic:
		// Token provisioning is optional, but once any part of the
		// application block is set, the whole block is required.
		if c.applicationConfigured() {
			if c.ClientID == "" {
				violations = append(violations, "CLIENT_ID is required for token provisioning")
			}
			if c.ClientSecret == "" {
				violations = append(violations, "CLIENT_SECRET is required for token provisioning")
			}
			if c.TokenNote == "" {
				violations = append(violations, "TOKEN_NOTE is required for token provisioning")
			}
			if c.TokenURL == "" {
				violations = append(violations, "TOKEN_URL is required for token provisioning")
			}
			if c.TokenScopes == nil {
				violations = append(violations, "TOKEN_SCOPES is required for token provisioning")
			}
		}
	case SchemeToken:
		if c.ClientID == "" {
			violations = append(violations, "CLIENT_ID is required for the token scheme")
		}
		if c.ClientSecret == "" {
			violations = append(violations, "CLIENT_SECRET is required for the token scheme")
		}
	default:
		violations = append(violations, fmt.Sprintf("unknown AUTH_SCHEME %q", c.AuthScheme))
	}

	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		violations = append(violations, fmt.Sprintf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}

	if c.CacheSize <= 0 {
		violations = append(violations, "CACHE_SIZE must be positive")
	}
	if c.CacheTTL <= 0 {
		violations = append(violations, "CACHE_TTL must be positive")
	}

	if len(violations) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(violations, "; "))
	}
	return nil
}

func (c *Config) applicationConfigured() bool {
	return c.ClientID != "" || c.ClientSecret != "" ||
		c.TokenNote != "" || c.TokenURL != "" || c.TokenScopes != nil
}

// BasicSchemeConfig maps the flat environment settings onto the basic
// scheme's configuration.
func (c *Config) BasicSchemeConfig() scheme.BasicConfig {
	cfg := scheme.BasicConfig{
		Organization: c.Organization,
		Realm:        c.Realm,
	}

	if c.applicationConfigured() {
		cfg.Application = &scheme.ApplicationConfig{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Note:         c.TokenNote,
			Scopes:       c.TokenScopes,
			URL:          c.TokenURL,
		}
	}
	return cfg
}

// TokenSchemeConfig maps the flat environment settings onto the token
// scheme's configuration.
func (c *Config) TokenSchemeConfig() scheme.TokenConfig {
	return scheme.TokenConfig{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Organization: c.Organization,
		Realm:        c.Realm,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		return parts
	}
	return defaultValue
}
