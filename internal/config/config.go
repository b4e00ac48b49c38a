package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend constants
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string // Public base URL of this gateway (used in discovery documents)
	IssuerURL  string // Issuer advertised in the OIDC discovery document

	// Upstream BV-BRC services
	AuthenticationURL string        // Username/password -> session token endpoint
	AuthTimeout       time.Duration // Bounded timeout for authentication calls
	DataAPIURL        string        // Solr-backed data API
	DataTimeout       time.Duration // Bounded timeout for data queries
	WorkspaceAPIURL   string        // Workspace JSON-RPC service
	ServiceAPIURL     string        // AppService JSON-RPC service
	RPCTimeout        time.Duration // Bounded timeout for JSON-RPC calls

	// OAuth settings
	AllowedCallbackURLs []string      // Fixed allow-list; localhost URLs are always allowed
	AuthCodeExpiration  time.Duration // Authorization code lifetime
	AccessTokenTTL      time.Duration // expires_in advertised in token responses
	RequiredScopes      []string      // Scopes advertised for the protected resource
	CodeSweepInterval   time.Duration // Expired-code sweep period (0 disables)

	// Storage
	StoreBackend  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	EnableRateLimit int // requests per minute on login/token endpoints (0 disables)

	// Metrics
	MetricsEnabled bool

	// Gin mode
	IsProduction bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":12010"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:12010"),
		IssuerURL:  getEnv("ISSUER_URL", "https://www.bv-brc.org"),

		AuthenticationURL: getEnv("AUTHENTICATION_URL", "https://user.patricbrc.org/authenticate"),
		AuthTimeout:       getEnvDuration("AUTH_TIMEOUT", 30*time.Second),
		DataAPIURL:        getEnv("DATA_API_URL", "https://www.bv-brc.org/api-bulk"),
		DataTimeout:       getEnvDuration("DATA_TIMEOUT", 300*time.Second),
		WorkspaceAPIURL:   getEnv("WORKSPACE_API_URL", "https://p3.theseed.org/services/Workspace"),
		ServiceAPIURL:     getEnv("SERVICE_API_URL", "https://p3.theseed.org/services/app_service"),
		RPCTimeout:        getEnvDuration("RPC_TIMEOUT", 30*time.Second),

		AllowedCallbackURLs: getEnvSlice("ALLOWED_CALLBACK_URLS", []string{
			"https://chatgpt.com/connector_platform_oauth_redirect",
			"https://claude.ai/api/mcp/auth_callback",
		}),
		AuthCodeExpiration: getEnvDuration("AUTH_CODE_EXPIRATION", 10*time.Minute),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RequiredScopes:     getEnvSlice("REQUIRED_SCOPES", []string{"profile", "token"}),
		CodeSweepInterval:  getEnvDuration("CODE_SWEEP_INTERVAL", 5*time.Minute),

		StoreBackend:  getEnv("STORE_BACKEND", StoreBackendMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EnableRateLimit: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		IsProduction:   getEnvBool("PRODUCTION", false),
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
		var parts []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
