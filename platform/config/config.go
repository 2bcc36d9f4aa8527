// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
}

// OAuthConfig provides settings for third-party OAuth connect flows.
type OAuthConfig interface {
	JWTConfig
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetHubSpotClientID() string
	GetHubSpotClientSecret() string
	GetHubSpotRedirectURL() string
	GetFrontendBaseURL() string
}

// CallingConfig provides settings for the outbound call provider.
type CallingConfig interface {
	GetCallProviderURL() string
	GetCallProviderAPIKey() string
	IsCallingEnabled() bool
}

// EnrichmentConfig provides settings for website enrichment jobs.
type EnrichmentConfig interface {
	GetEnrichmentSweepInterval() time.Duration
	GetEnrichmentSweepLimit() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketLeadImports() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	MigrationsDir           string
	JWTAccessSecret         string
	AccessTokenTTL          time.Duration
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	GoogleClientID          string
	GoogleClientSecret      string
	GoogleRedirectURL       string
	HubSpotClientID         string
	HubSpotClientSecret     string
	HubSpotRedirectURL      string
	FrontendBaseURL         string
	CallProviderURL         string
	CallProviderAPIKey      string
	EnrichmentSweepInterval time.Duration
	EnrichmentSweepLimit    int
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	MinIOMaxFileSize        int64
	MinioBucketLeadImports  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }

// OAuthConfig implementation
func (c *Config) GetGoogleClientID() string      { return c.GoogleClientID }
func (c *Config) GetGoogleClientSecret() string  { return c.GoogleClientSecret }
func (c *Config) GetGoogleRedirectURL() string   { return c.GoogleRedirectURL }
func (c *Config) GetHubSpotClientID() string     { return c.HubSpotClientID }
func (c *Config) GetHubSpotClientSecret() string { return c.HubSpotClientSecret }
func (c *Config) GetHubSpotRedirectURL() string  { return c.HubSpotRedirectURL }
func (c *Config) GetFrontendBaseURL() string     { return c.FrontendBaseURL }

// CallingConfig implementation
func (c *Config) GetCallProviderURL() string    { return c.CallProviderURL }
func (c *Config) GetCallProviderAPIKey() string { return c.CallProviderAPIKey }
func (c *Config) IsCallingEnabled() bool        { return c.CallProviderURL != "" }

// EnrichmentConfig implementation
func (c *Config) GetEnrichmentSweepInterval() time.Duration { return c.EnrichmentSweepInterval }
func (c *Config) GetEnrichmentSweepLimit() int              { return c.EnrichmentSweepLimit }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string           { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string          { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string          { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool               { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64         { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketLeadImports() string  { return c.MinioBucketLeadImports }
func (c *Config) IsMinIOEnabled() bool               { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsDir:           getEnv("MIGRATIONS_DIR", "migrations"),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:          mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		GoogleClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:       getEnv("GOOGLE_REDIRECT_URL", ""),
		HubSpotClientID:         getEnv("HUBSPOT_CLIENT_ID", ""),
		HubSpotClientSecret:     getEnv("HUBSPOT_CLIENT_SECRET", ""),
		HubSpotRedirectURL:      getEnv("HUBSPOT_REDIRECT_URL", ""),
		FrontendBaseURL:         getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		CallProviderURL:         getEnv("CALL_PROVIDER_URL", ""),
		CallProviderAPIKey:      getEnv("CALL_PROVIDER_API_KEY", ""),
		EnrichmentSweepInterval: mustDuration(getEnv("ENRICHMENT_SWEEP_INTERVAL", "24h")),
		EnrichmentSweepLimit:    mustInt(getEnv("ENRICHMENT_SWEEP_LIMIT", "50")),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:        mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "104857600")),
		MinioBucketLeadImports:  getEnv("MINIO_BUCKET_LEAD_IMPORTS", "lead-imports"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EnrichmentSweepLimit <= 0 {
		return nil, fmt.Errorf("ENRICHMENT_SWEEP_LIMIT must be positive")
	}

	return cfg, nil
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

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
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
