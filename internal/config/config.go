package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// RedisConfig holds Redis connection settings for the token/presence cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// VendorCredentials holds the OAuth client credentials for one external vendor.
// The Amazon family (ads, dsp, fresh, business, logistics, brand registry)
// shares a single Login-with-Amazon credential set.
type VendorCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// IntegrationsConfig holds per-vendor OAuth credentials and API keys.
type IntegrationsConfig struct {
	Amazon   VendorCredentials
	Facebook VendorCredentials
	Google   VendorCredentials
	// OpenAIKey and AnthropicKey authenticate direct API-key access; the model
	// vendors do not use the authorization-code flow.
	OpenAIKey    string
	AnthropicKey string
	// RequestsPerSecond caps outbound calls per vendor.
	RequestsPerSecond float64
	// MaxRetries bounds retry attempts for retryable vendor errors.
	MaxRetries int
}

// HITLConfig holds approval-workflow tuning values.
type HITLConfig struct {
	// AutoApproveBelow is the risk score under which requests skip review.
	AutoApproveBelow int
	// PendingDeadline is how long a request may sit pending before the expiry
	// sweep escalates it.
	PendingDeadline time.Duration
	// SweepSpec is a cron spec for the expiry sweep.
	SweepSpec string
}

// FulfillmentConfig holds the shipment status poller settings.
type FulfillmentConfig struct {
	// PollSpec is a cron spec for the shipment status poller.
	PollSpec string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	DefaultTenant string
	Database      DatabaseConfig
	Redis         RedisConfig
	MinIO         MinIOConfig
	Integrations  IntegrationsConfig
	HITL          HITLConfig
	Fulfillment   FulfillmentConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"), // default only for non-sensitive value
		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Integrations: IntegrationsConfig{
			Amazon: VendorCredentials{
				ClientID:     getEnv("AMAZON_LWA_CLIENT_ID", ""),
				ClientSecret: getEnv("AMAZON_LWA_CLIENT_SECRET", ""),
				RedirectURI:  getEnv("AMAZON_LWA_REDIRECT_URI", ""),
			},
			Facebook: VendorCredentials{
				ClientID:     getEnv("FACEBOOK_APP_ID", ""),
				ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
				RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
			},
			Google: VendorCredentials{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
			},
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:      getEnv("ANTHROPIC_API_KEY", ""),
			RequestsPerSecond: getEnvFloat("VENDOR_REQUESTS_PER_SECOND", 5),
			MaxRetries:        getEnvInt("VENDOR_MAX_RETRIES", 3),
		},
		HITL: HITLConfig{
			AutoApproveBelow: getEnvInt("HITL_AUTO_APPROVE_BELOW", 2),
			PendingDeadline:  time.Duration(getEnvInt("HITL_PENDING_DEADLINE_SEC", 86400)) * time.Second,
			SweepSpec:        getEnv("HITL_SWEEP_SPEC", "@every 5m"),
		},
		Fulfillment: FulfillmentConfig{
			PollSpec: getEnv("FULFILLMENT_POLL_SPEC", "@every 30s"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
