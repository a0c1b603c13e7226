package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string
	Env     string

	MySQL MySQLConfig
	Redis RedisConfig

	RabbitMQURL    string
	EventsExchange string

	Razorpay RazorpayConfig

	CORSAllowedOrigins []string
	RateLimit          RateLimitConfig

	LogLevel string
}

type MySQLConfig struct {
	User            string
	Password        string
	Host            string
	Port            string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type RedisConfig struct {
	Host string
	Port string
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Configured is false unless both keys are present; payment endpoints
// refuse to work without them.
func (c RazorpayConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int64
	Window      time.Duration
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the environment, after loading .env when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:    stringFromEnv("PORT", "8080"),
		GinMode: stringFromEnv("GIN_MODE", "release"),
		Env:     strings.TrimSpace(os.Getenv("GO_ENV")),
		MySQL: MySQLConfig{
			User:            os.Getenv("MYSQL_USER"),
			Password:        os.Getenv("MYSQL_PASSWORD"),
			Host:            stringFromEnv("MYSQL_HOST", "127.0.0.1"),
			Port:            stringFromEnv("MYSQL_PORT", "3306"),
			Database:        os.Getenv("MYSQL_DATABASE"),
			MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
			AutoMigrate:     boolFromEnv("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host: strings.TrimSpace(os.Getenv("REDIS_HOST")),
			Port: stringFromEnv("REDIS_PORT", "6379"),
		},
		RabbitMQURL:    strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		EventsExchange: stringFromEnv("EVENTS_EXCHANGE", "order.exchange"),
		Razorpay: RazorpayConfig{
			KeyID:     strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
			KeySecret: strings.TrimSpace(os.Getenv("RAZORPAY_KEY_SECRET")),
			BaseURL:   strings.TrimRight(stringFromEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"), "/"),
			Timeout:   time.Duration(intFromEnv("PAYMENT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		CORSAllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimit: RateLimitConfig{
			Enabled:     boolFromEnv("RATE_LIMIT_ENABLED", false),
			MaxRequests: int64(intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)),
			Window:      time.Duration(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		LogLevel: stringFromEnv("LOG_LEVEL", "info"),
	}
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
