package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "donorprofile/pkg/platform/strings"
)

// Server captures the process configuration.
type Server struct {
	Addr string

	// Upstream profile API and captcha
	APIBaseURL         string
	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	UpstreamTimeout    time.Duration

	// Session storage; empty RedisURL selects the in-memory store
	RedisURL            string
	SessionTTL          time.Duration
	SessionCookieSecure bool

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	// TrustedProxies are addresses or CIDRs allowed to set X-Forwarded-For; empty trusts none
	TrustedProxies []string
	// VerifyRateLimit is the per-IP number of verification submits per minute; 0 disables
	VerifyRateLimit int
}

const (
	defaultAddr            = ":3000"
	defaultAPIBaseURL      = "http://localhost:8000"
	defaultUpstreamTimeout = 10 * time.Second
	defaultSessionTTL      = 24 * time.Hour
	defaultVerifyRateLimit = 10
)

// Load reads an optional .env file and then the environment.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                envOr("ADDR", defaultAddr),
		APIBaseURL:          strings.TrimRight(envOr("API_BASE_URL", defaultAPIBaseURL), "/"),
		RecaptchaSiteKey:    os.Getenv("RECAPTCHA_SITE_KEY"),
		RecaptchaSecretKey:  os.Getenv("RECAPTCHA_SECRET_KEY"),
		RedisURL:            os.Getenv("REDIS_URL"),
		SessionCookieSecure: os.Getenv("SESSION_COOKIE_SECURE") == "true",
		LogLevel:            envOr("LOG_LEVEL", "info"),
		LogFormat:           envOr("LOG_FORMAT", "json"),
		CORSAllowedOrigins:  pstrings.SplitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:      pstrings.SplitList(os.Getenv("TRUSTED_PROXIES")),
	}

	var err error
	if cfg.UpstreamTimeout, err = durationEnv("UPSTREAM_TIMEOUT", defaultUpstreamTimeout); err != nil {
		return Server{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return Server{}, err
	}
	if cfg.VerifyRateLimit, err = intEnv("VERIFY_RATE_LIMIT", defaultVerifyRateLimit); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return n, nil
}
