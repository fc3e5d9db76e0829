// Package config reads the HOMEBASE_* environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/homebase/internal/backup"
	"github.com/dukerupert/homebase/internal/database"
)

type Config struct {
	Port      string
	DBDriver  database.Dialect
	DBPath    string
	DBURL     string
	LogLevel  string
	LogFormat string

	JWTSecret     string
	SessionCookie string
	CORSOrigins   []string
	// RateLimit is requests per minute per caller. Zero disables limiting.
	RateLimit        int
	DispatchInterval time.Duration

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	PostmarkToken string
	EmailFrom     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	S3 backup.S3Config
}

// DSN is the data source for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == database.Postgres {
		return c.DBURL
	}
	return c.DBPath
}

// Load reads the environment. Every malformed value is reported together.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv("HOMEBASE_" + key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	atoi := func(key string, def int) int {
		s := env(key, "")
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("HOMEBASE_%s: %q is not a non-negative integer", key, s))
			return def
		}
		return n
	}

	cfg := Config{
		Port:            env("PORT", "8080"),
		DBDriver:        database.Dialect(env("DB_DRIVER", string(database.SQLite))),
		DBPath:          env("DB_PATH", "homebase.db"),
		DBURL:           env("DATABASE_URL", ""),
		LogLevel:        env("LOG_LEVEL", "info"),
		LogFormat:       env("LOG_FORMAT", "text"),
		JWTSecret:       env("JWT_SECRET", ""),
		SessionCookie:   env("SESSION_COOKIE", "session_token"),
		RateLimit:       atoi("RATE_LIMIT", 300),
		VAPIDPublicKey:  env("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: env("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: env("VAPID_SUBSCRIBER", ""),
		PostmarkToken:   env("POSTMARK_TOKEN", ""),
		EmailFrom:       env("EMAIL_FROM", ""),
		SMTPHost:        env("SMTP_HOST", ""),
		SMTPPort:        atoi("SMTP_PORT", 587),
		SMTPUser:        env("SMTP_USER", ""),
		SMTPPass:        env("SMTP_PASS", ""),
		TwilioSID:       env("TWILIO_ACCOUNT_SID", ""),
		TwilioToken:     env("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:      env("TWILIO_FROM", ""),
		S3: backup.S3Config{
			Endpoint:  env("S3_ENDPOINT", ""),
			Bucket:    env("S3_BUCKET", ""),
			Region:    env("S3_REGION", "us-east-1"),
			AccessKey: env("S3_ACCESS_KEY", ""),
			SecretKey: env("S3_SECRET_KEY", ""),
		},
	}

	for _, o := range strings.Split(env("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	interval, err := time.ParseDuration(env("DISPATCH_INTERVAL", "30s"))
	if err != nil || interval <= 0 {
		errs = append(errs, fmt.Errorf("HOMEBASE_DISPATCH_INTERVAL: %q is not a positive duration", env("DISPATCH_INTERVAL", "")))
		interval = 30 * time.Second
	}
	cfg.DispatchInterval = interval

	switch cfg.DBDriver {
	case database.SQLite:
	case database.Postgres:
		if cfg.DBURL == "" {
			errs = append(errs, errors.New("HOMEBASE_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("HOMEBASE_DB_DRIVER: unknown driver %q", cfg.DBDriver))
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("HOMEBASE_LOG_FORMAT: %q must be text or json", cfg.LogFormat))
	}

	if (cfg.VAPIDPublicKey == "") != (cfg.VAPIDPrivateKey == "") {
		errs = append(errs, errors.New("HOMEBASE_VAPID_PUBLIC_KEY and HOMEBASE_VAPID_PRIVATE_KEY must be set together"))
	}

	return cfg, errors.Join(errs...)
}
