// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"salesrep_sync/platform/apperr"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// StorefrontConfig provides the storefront admin API settings.
type StorefrontConfig interface {
	GetStoreDomain() string
	GetAPIVersion() string
	GetAdminToken() string
	GetStorefrontTimeout() time.Duration
}

// SigningConfig provides request-signing settings.
type SigningConfig interface {
	GetSigningSecretRef() string
	GetSignatureHeader() string
	GetRequireSignature() bool
}

// SyncConfig provides the sales-rep update settings.
type SyncConfig interface {
	GetMatchStrategy() string
	GetDefaultRepHandle() string
	GetMetafieldNamespace() string
	GetMetafieldKey() string
	GetStatusPolicy() string
}

// ERPConfig provides the ERP-side forwarding settings.
type ERPConfig interface {
	SigningConfig
	GetERPSource() string
	GetRepFilterStrategy() string
	GetRepFilterValues() []string
	GetForwardURL() string
	GetRESTletURL() string
	GetRESTletScriptID() string
	GetRESTletDeployID() string
	GetForwardTimeout() time.Duration
}

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSyncMaxRetry() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	StoreDomain       string
	APIVersion        string
	AdminToken        string
	StorefrontTimeout time.Duration
	SigningSecretRef  string
	SignatureHeader   string
	RequireSignature  bool
	MatchStrategy     string
	DefaultRepHandle  string
	MetafieldNS       string
	MetafieldKey      string
	StatusPolicy      string
	ERPSource         string
	ERPDirectoryFile  string
	RepFilterStrategy string
	RepFilterValues   []string
	ForwardURL        string
	RESTletURL        string
	RESTletScriptID   string
	RESTletDeployID   string
	ForwardTimeout    time.Duration
	DatabaseURL       string
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueue        string
	AsynqConcurrency  int
	SyncMaxRetry      int
	WorkerMetricsAddr string
	JWTAccessSecret   string
	CORSAllowAll      bool
	CORSOrigins       []string
	RateLimitRPS      float64
	RateLimitBurst    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// StorefrontConfig implementation
func (c *Config) GetStoreDomain() string              { return c.StoreDomain }
func (c *Config) GetAPIVersion() string               { return c.APIVersion }
func (c *Config) GetAdminToken() string               { return c.AdminToken }
func (c *Config) GetStorefrontTimeout() time.Duration { return c.StorefrontTimeout }

// SigningConfig implementation
func (c *Config) GetSigningSecretRef() string { return c.SigningSecretRef }
func (c *Config) GetSignatureHeader() string  { return c.SignatureHeader }
func (c *Config) GetRequireSignature() bool   { return c.RequireSignature }

// SyncConfig implementation
func (c *Config) GetMatchStrategy() string      { return c.MatchStrategy }
func (c *Config) GetDefaultRepHandle() string   { return c.DefaultRepHandle }
func (c *Config) GetMetafieldNamespace() string { return c.MetafieldNS }
func (c *Config) GetMetafieldKey() string       { return c.MetafieldKey }
func (c *Config) GetStatusPolicy() string       { return c.StatusPolicy }

// ERPConfig implementation
func (c *Config) GetERPSource() string             { return c.ERPSource }
func (c *Config) GetRepFilterStrategy() string     { return c.RepFilterStrategy }
func (c *Config) GetRepFilterValues() []string     { return c.RepFilterValues }
func (c *Config) GetForwardURL() string            { return c.ForwardURL }
func (c *Config) GetRESTletURL() string            { return c.RESTletURL }
func (c *Config) GetRESTletScriptID() string       { return c.RESTletScriptID }
func (c *Config) GetRESTletDeployID() string       { return c.RESTletDeployID }
func (c *Config) GetForwardTimeout() time.Duration { return c.ForwardTimeout }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueue }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetSyncMaxRetry() int      { return c.SyncMaxRetry }

// GetWorkerMetricsAddr is where the worker serves /metrics; empty disables it.
func (c *Config) GetWorkerMetricsAddr() string { return c.WorkerMetricsAddr }

// IsDatabaseEnabled reports whether the ERP directory mirror is configured.
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// IsSchedulerEnabled reports whether the async queue is configured.
func (c *Config) IsSchedulerEnabled() bool { return c.RedisURL != "" }

// IsAdminEnabled reports whether JWT-protected admin routes are mounted.
func (c *Config) IsAdminEnabled() bool { return c.JWTAccessSecret != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", ""))

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StoreDomain:       strings.TrimSpace(getEnv("SHOPIFY_STORE_DOMAIN", "")),
		APIVersion:        getEnv("SHOPIFY_API_VERSION", "2024-01"),
		AdminToken:        getEnv("SHOPIFY_ADMIN_TOKEN", ""),
		StorefrontTimeout: mustDuration(getEnv("SHOPIFY_HTTP_TIMEOUT", "15s")),
		SigningSecretRef:  getEnv("SIGNING_SECRET_REF", "custsecret_sp_shopify_sales_rep_update"),
		SignatureHeader:   getEnv("SIGNATURE_HEADER", "X-Signature-SHA256"),
		RequireSignature:  strings.EqualFold(getEnv("REQUIRE_SIGNATURE", "false"), "true"),
		MatchStrategy:     strings.ToLower(getEnv("SALES_REP_MATCH_STRATEGY", "email")),
		DefaultRepHandle:  getEnv("SALES_REP_DEFAULT_HANDLE", "onboarding"),
		MetafieldNS:       getEnv("SALES_REP_METAFIELD_NAMESPACE", "suavecito"),
		MetafieldKey:      getEnv("SALES_REP_METAFIELD_KEY", "sales_rep"),
		StatusPolicy:      strings.ToLower(getEnv("STATUS_POLICY", "default")),
		ERPSource:         strings.ToLower(getEnv("ERP_SOURCE", "text")),
		ERPDirectoryFile:  getEnv("ERP_DIRECTORY_FILE", ""),
		RepFilterStrategy: strings.ToLower(getEnv("REP_FILTER_STRATEGY", "none")),
		RepFilterValues:   splitCSV(getEnv("REP_FILTER_VALUES", "")),
		ForwardURL:        getEnv("FORWARD_URL", ""),
		RESTletURL:        getEnv("ERP_RESTLET_URL", ""),
		RESTletScriptID:   getEnv("ERP_RESTLET_SCRIPT_ID", ""),
		RESTletDeployID:   getEnv("ERP_RESTLET_DEPLOY_ID", ""),
		ForwardTimeout:    mustDuration(getEnv("FORWARD_TIMEOUT", "30s")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueue:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		SyncMaxRetry:      mustInt(getEnv("SYNC_MAX_RETRY", "0")),
		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:      containsWildcard(corsOrigins),
		CORSOrigins:       corsOrigins,
		RateLimitRPS:      mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:    mustInt(getEnv("RATE_LIMIT_BURST", "20")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.MatchStrategy {
	case "handle", "email":
	default:
		return apperr.Configuration(fmt.Sprintf("SALES_REP_MATCH_STRATEGY must be handle or email, got %q", c.MatchStrategy))
	}
	switch c.RepFilterStrategy {
	case "none", "allow", "deny":
	default:
		return apperr.Configuration(fmt.Sprintf("REP_FILTER_STRATEGY must be none, allow or deny, got %q", c.RepFilterStrategy))
	}
	switch c.ERPSource {
	case "text", "directory":
	default:
		return apperr.Configuration(fmt.Sprintf("ERP_SOURCE must be text or directory, got %q", c.ERPSource))
	}
	switch c.StatusPolicy {
	case "default", "uniform", "restlet":
	default:
		return apperr.Configuration(fmt.Sprintf("STATUS_POLICY must be default, uniform or restlet, got %q", c.StatusPolicy))
	}
	if c.SyncMaxRetry < 0 {
		return apperr.Configuration("SYNC_MAX_RETRY must be >= 0")
	}
	return nil
}

// RequireStorefront fails when the storefront endpoint cannot be built.
func (c *Config) RequireStorefront() error {
	if c.StoreDomain == "" {
		return apperr.Configuration("SHOPIFY_STORE_DOMAIN is required")
	}
	if c.AdminToken == "" {
		return apperr.Configuration("SHOPIFY_ADMIN_TOKEN is required")
	}
	if c.APIVersion == "" {
		return apperr.Configuration("SHOPIFY_API_VERSION is required")
	}
	return nil
}

// RequireForwarding fails when the ERP side has nowhere to send notifications.
func (c *Config) RequireForwarding() error {
	if c.ForwardURL != "" {
		return nil
	}
	if c.RESTletURL == "" || c.RESTletScriptID == "" || c.RESTletDeployID == "" {
		return apperr.Configuration("FORWARD_URL or ERP_RESTLET_URL with ERP_RESTLET_SCRIPT_ID and ERP_RESTLET_DEPLOY_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
