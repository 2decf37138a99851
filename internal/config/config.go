package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultSessionTTL      = "168h" // 7 days
	defaultSweepInterval   = "1h"
	defaultPresignExpiry   = "30m"
	defaultTransferTimeout = "30m"
)

// Config collects everything the API process reads from the environment.
type Config struct {
	AppEnv     string
	ListenAddr string

	DatabaseDSN string

	SessionTTL    time.Duration
	SweepInterval time.Duration
	CookieSecure  bool

	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool
	PresignExpiry time.Duration

	// Upper bound for a single direct-to-storage transfer, consumed by the
	// upload client. Independent of PresignExpiry.
	TransferTimeout time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string

	CORSAllowedOrigins string
}

// Load reads configuration from the environment. Values with sane defaults
// are optional; the database DSN and object-storage credentials are not.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		ListenAddr:          getEnv("LISTEN_ADDR", defaultListenAddr),
		DatabaseDSN:         os.Getenv("DATABASE_URL"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
		S3Bucket:            getEnv("S3_BUCKET", "neodrive"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CORSAllowedOrigins:  os.Getenv("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is empty")
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SESSION_SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}
	if cfg.PresignExpiry, err = getDuration("PRESIGN_EXPIRY", defaultPresignExpiry); err != nil {
		return nil, err
	}
	if cfg.TransferTimeout, err = getDuration("TRANSFER_TIMEOUT", defaultTransferTimeout); err != nil {
		return nil, err
	}

	cfg.CookieSecure = getBool("COOKIE_SECURE", cfg.AppEnv == "production")
	cfg.S3UseSSL = getBool("S3_USE_SSL", false)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key, fallback string) (time.Duration, error) {
	v := getEnv(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}
