package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs. Values are read once at
// startup and handed to constructors explicitly; no package keeps a
// reference to the environment.
type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// DataDir is the root of the flat-file record store.
	DataDir string

	// HashingSecret keys the password HMAC.
	HashingSecret string

	// MenuFile optionally overrides the compiled-in menu (YAML).
	MenuFile string

	Stripe  Upstream
	Mailgun Upstream

	// MailFrom is the sender identity on receipt emails.
	MailFrom string

	// PaymentSource is the charge source token passed to the gateway.
	PaymentSource string

	// UpstreamTimeout bounds each outbound payment/notification call.
	UpstreamTimeout time.Duration

	// RequestsPerSecond and Burst feed the API rate limiter.
	RequestsPerSecond float64
	Burst             int
}

// Upstream is one external collaborator endpoint.
type Upstream struct {
	BaseURL string
	APIKey  string
}

func Load() Config {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 3000),

		DataDir:       getEnv("DATA_DIR", ".data"),
		HashingSecret: getEnv("HASHING_SECRET", "dev-only-secret"),
		MenuFile:      getEnv("MENU_FILE", ""),

		Stripe: Upstream{
			BaseURL: getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			APIKey:  getEnv("STRIPE_API_KEY", ""),
		},
		Mailgun: Upstream{
			BaseURL: getEnv("MAILGUN_BASE_URL", "https://api.mailgun.net"),
			APIKey:  getEnv("MAILGUN_API_KEY", ""),
		},
		MailFrom:      getEnv("MAIL_FROM", "Pizza Delivery <receipts@pizzadelivery.local>"),
		PaymentSource: getEnv("PAYMENT_SOURCE", "tok_visa"),

		UpstreamTimeout:   getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 50),
		Burst:             getEnvInt("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
