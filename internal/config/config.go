package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string // "development" | "production"

	AllowedOrigins []string // CORS allowed origins

	JWT JWT

	// DirectoryBaseURL is the base URL of the user directory service, e.g.
	// "http://user-service:4000/v1". The gateway owns no user records itself.
	DirectoryBaseURL string
	DirectoryTimeout time.Duration

	// EventBackend selects the event publisher implementation once at startup:
	// "sns" or "log".
	EventBackend   string
	SNSTopicARN    string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	// SSMSecretParam, when set, names the SSM parameter holding the JWT
	// signing secret. It overrides JWT_SECRET at startup.
	SSMSecretParam string

	// LinkBaseURL is the public URL prefix embedded in emailed
	// verification/reset links.
	LinkBaseURL string
}

// JWT holds token signing configuration. Immutable after Load; the token
// provider keeps its own copy so no global state is shared.
type JWT struct {
	Secret   string
	Issuer   string
	Audience string

	SessionTTL    time.Duration // session tokens handed to callers
	ResetTTL      time.Duration // password reset purpose tokens
	VerifyTTL     time.Duration // email verification purpose tokens
	ReactivateTTL time.Duration // account reactivation purpose tokens
	InternalTTL   time.Duration // internal directory-call authorization tokens

	CookieName   string
	CookieSecure bool
}

const minSecretLen = 32

// Load reads all configuration from environment variables.
func Load() *Config {
	env := getEnv("APP_ENV", "development")
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         env,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		JWT: JWT{
			Secret:        getEnv("JWT_SECRET", ""),
			Issuer:        getEnv("JWT_ISSUER", "auth-gateway"),
			Audience:      getEnv("JWT_AUDIENCE", "auth-gateway-clients"),
			SessionTTL:    getEnvDuration("JWT_SESSION_TTL", time.Hour),
			ResetTTL:      getEnvDuration("JWT_RESET_TTL", time.Hour),
			VerifyTTL:     getEnvDuration("JWT_VERIFY_TTL", 24*time.Hour),
			ReactivateTTL: getEnvDuration("JWT_REACTIVATE_TTL", time.Hour),
			InternalTTL:   getEnvDuration("JWT_INTERNAL_TTL", 15*time.Minute),
			CookieName:    getEnv("JWT_COOKIE_NAME", "token"),
			CookieSecure:  env == "production",
		},
		DirectoryBaseURL: getEnv("USER_DIRECTORY_URL", ""),
		DirectoryTimeout: getEnvDuration("USER_DIRECTORY_TIMEOUT", 10*time.Second),
		EventBackend:     getEnv("EVENT_BACKEND", "log"),
		SNSTopicARN:      getEnv("SNS_TOPIC_ARN", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:   getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SSMSecretParam:   getEnv("SSM_JWT_SECRET_PARAM", ""),
		LinkBaseURL:      getEnv("LINK_BASE_URL", "http://localhost:3000"),
	}
}

// Validate enforces fail-fast startup invariants. A gateway with a short
// signing secret or no directory to talk to must not start.
func (c *Config) Validate() error {
	if c.SSMSecretParam == "" {
		if err := c.ValidateSecret(); err != nil {
			return err
		}
	}
	if c.DirectoryBaseURL == "" {
		return fmt.Errorf("USER_DIRECTORY_URL is required")
	}
	if c.EventBackend != "sns" && c.EventBackend != "log" {
		return fmt.Errorf("EVENT_BACKEND must be \"sns\" or \"log\", got %q", c.EventBackend)
	}
	if c.EventBackend == "sns" && c.SNSTopicARN == "" {
		return fmt.Errorf("SNS_TOPIC_ARN is required when EVENT_BACKEND=sns")
	}
	return nil
}

// ValidateSecret checks the signing secret length. Called again after an SSM
// fetch replaces the env value.
func (c *Config) ValidateSecret() error {
	if len(c.JWT.Secret) < minSecretLen {
		return fmt.Errorf("JWT secret must be at least %d characters", minSecretLen)
	}
	return nil
}

// IsProduction reports whether the gateway runs with production hardening
// (secure cookies, sanitized upstream errors, internal endpoints disabled).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
