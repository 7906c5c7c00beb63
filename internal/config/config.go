package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	defaultAppEnv                = "dev"
	defaultHTTPAddr              = ":8080"
	defaultDatabaseURL           = "hrdesk.db"
	defaultJWTSecret             = "change-me-jwt-secret"
	defaultJWTTTL                = "24h"
	defaultOrgTimezone           = "UTC"
	defaultRequestTimeout        = "10s"
	defaultBookingTxRetries      = "5"
	defaultNotificationRetention = "720h"
)

type Config struct {
	AppEnv                string
	HTTPAddr              string
	DatabaseURL           string
	JWTSecret             string
	JWTTTL                time.Duration
	OrgTimezone           *time.Location
	RequestTimeout        time.Duration
	BookingTxRetries      int
	AMQPURL               string
	CORSAllowedOrigins    []string
	NotificationRetention time.Duration
}

// Load reads configuration from the environment. Callers that want .env support
// load it with godotenv before calling Load.
func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AMQPURL = strings.TrimSpace(os.Getenv("AMQP_URL"))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}

	cfg.NotificationRetention, err = parseDurationEnv("NOTIFICATION_RETENTION", defaultNotificationRetention)
	if err != nil {
		return nil, err
	}

	cfg.BookingTxRetries, err = parseIntEnv("BOOKING_TX_RETRIES", defaultBookingTxRetries)
	if err != nil {
		return nil, err
	}

	tzName := strings.TrimSpace(getEnv("ORG_TIMEZONE", defaultOrgTimezone))
	cfg.OrgTimezone, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid ORG_TIMEZONE value %q: %w", tzName, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s tz=%s request_timeout=%s tx_retries=%d amqp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.OrgTimezone, cfg.RequestTimeout, cfg.BookingTxRetries, cfg.AMQPURL != "")

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.NotificationRetention <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be > 0")
	}
	if cfg.BookingTxRetries < 1 {
		return fmt.Errorf("BOOKING_TX_RETRIES must be >= 1")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
