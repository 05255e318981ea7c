// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as
// server timeouts, logging, the database URL, the Telegram bot credentials,
// rate limiting, optional Redis/Kafka infrastructure and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS     bool
	HSTSMaxAge     time.Duration
	FrameAncestors []string // FRAME_ANCESTORS, origins allowed to embed the Mini App
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "sushi-order-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// TelegramConfig holds the bot credentials and the mini-app settings.
// An empty Token or AdminChatID turns the dependent features into no-ops.
type TelegramConfig struct {
	Token          string        // TELEGRAM_BOT_TOKEN
	AdminChatID    string        // ADMIN_CHAT_ID
	APIBase        string        // TELEGRAM_API_BASE
	Timeout        time.Duration // TELEGRAM_TIMEOUT, per outbound call
	WebhookSecret  string        // TELEGRAM_WEBHOOK_SECRET
	WebAppURL      string        // WEBAPP_URL
	MenuButtonText string        // MENU_BUTTON_TEXT
}

// ShopConfig holds customer-facing texts and static asset locations.
type ShopConfig struct {
	Currency    string // CURRENCY (ISO-4217)
	ContactText string // CONTACT_TEXT
	AboutText   string // ABOUT_TEXT
	MenuPath    string // MENU_PATH
	PublicDir   string // PUBLIC_DIR
}

// RedisConfig enables Update de-duplication when Addr is set.
type RedisConfig struct {
	Addr      string        // REDIS_ADDR
	DedupeTTL time.Duration // UPDATE_DEDUPE_TTL
}

// KafkaConfig enables order event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string // KAFKA_BROKERS
	OrdersTopic string   // KAFKA_ORDERS_TOPIC
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	ShutdownTimeout   time.Duration // graceful stop budget
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Persistence
	DatabaseURL string // sqlite://path or postgres://...

	// Bot
	Telegram TelegramConfig
	Shop     ShopConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Optional infrastructure
	Redis RedisConfig
	Kafka KafkaConfig

	// Observability
	OTEL OTELConfig
}

const (
	defaultContactText = "📞 Phone: +373 60 000 000\n📍 Address: Chișinău\n🕙 Every day 10:00–22:00"
	defaultAboutText   = "🍣 Oh My Sushi: fresh rolls and sets delivered across the city."
)

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// Persistence
		DatabaseURL: getenv("DATABASE_URL", "sqlite://db/development.db"),

		// Bot
		Telegram: TelegramConfig{
			Token:          strings.TrimSpace(getenv("TELEGRAM_BOT_TOKEN", "")),
			AdminChatID:    strings.TrimSpace(getenv("ADMIN_CHAT_ID", "")),
			APIBase:        strings.TrimRight(getenv("TELEGRAM_API_BASE", "https://api.telegram.org"), "/"),
			Timeout:        getdur("TELEGRAM_TIMEOUT", 10*time.Second),
			WebhookSecret:  getenv("TELEGRAM_WEBHOOK_SECRET", ""),
			WebAppURL:      getenv("WEBAPP_URL", "https://ohmysushi.md/"),
			MenuButtonText: getenv("MENU_BUTTON_TEXT", "Меню"),
		},
		Shop: ShopConfig{
			Currency:    strings.ToUpper(getenv("CURRENCY", "MDL")),
			ContactText: getenv("CONTACT_TEXT", defaultContactText),
			AboutText:   getenv("ABOUT_TEXT", defaultAboutText),
			MenuPath:    getenv("MENU_PATH", "lib/data/menu.json"),
			PublicDir:   getenv("PUBLIC_DIR", "public"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS:     getbool("ENABLE_HSTS", false),
			HSTSMaxAge:     getdur("HSTS_MAX_AGE", 180*24*time.Hour),
			FrameAncestors: splitCSV(getenv("FRAME_ANCESTORS",
				"https://web.telegram.org,https://*.telegram.org")),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Optional infrastructure
		Redis: RedisConfig{
			Addr:      getenv("REDIS_ADDR", ""),
			DedupeTTL: getdur("UPDATE_DEDUPE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:     splitCSV(getenv("KAFKA_BROKERS", "")),
			OrdersTopic: getenv("KAFKA_ORDERS_TOPIC", "orders"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "sushi-order-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return cfg, errors.New("DATABASE_URL must not be empty")
	}
	if cfg.Telegram.Timeout <= 0 {
		return cfg, errors.New("TELEGRAM_TIMEOUT must be > 0")
	}
	if u, err := url.Parse(cfg.Telegram.APIBase); err != nil || !u.IsAbs() {
		return cfg, errors.New("TELEGRAM_API_BASE must be an absolute URL")
	}
	if cfg.Telegram.WebAppURL != "" {
		if u, err := url.Parse(cfg.Telegram.WebAppURL); err != nil || !u.IsAbs() {
			return cfg, errors.New("WEBAPP_URL must be an absolute URL")
		}
	}
	if _, err := currency.ParseISO(cfg.Shop.Currency); err != nil {
		return cfg, errors.New("CURRENCY must be an ISO-4217 code")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.Redis.Addr != "" && cfg.Redis.DedupeTTL <= 0 {
		return cfg, errors.New("UPDATE_DEDUPE_TTL must be > 0")
	}
	if len(cfg.Kafka.Brokers) > 0 && strings.TrimSpace(cfg.Kafka.OrdersTopic) == "" {
		return cfg, errors.New("KAFKA_ORDERS_TOPIC must not be empty when KAFKA_BROKERS is set")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// BotConfigured reports whether outbound Telegram calls can be made.
func (c Config) BotConfigured() bool { return c.Telegram.Token != "" }

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
