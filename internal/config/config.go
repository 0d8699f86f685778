package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	ShopName      string
	ShopAddress   string

	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	UseMemorySessions bool
	SessionTTL        time.Duration

	GoogleCredentialsFile string
	CalendarID            string
	CalendarTimezone      string
	UseFakeCalendar       bool

	CatalogFile string

	WhatsAppBaseURL     string
	WhatsAppCountryCode string

	PaymentQRImage   string
	PaymentQRPayload string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, seeds variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ShopName:      getEnv("SHOP_NAME", "Seven Barber Club"),
		ShopAddress:   getEnv("SHOP_ADDRESS", ""),

		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		UseMemorySessions: getEnvAsBool("USE_MEMORY_SESSIONS", false),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		CalendarID:            getEnv("CALENDAR_ID", ""),
		CalendarTimezone:      getEnv("CALENDAR_TIMEZONE", "America/Guayaquil"),
		UseFakeCalendar:       getEnvAsBool("USE_FAKE_CALENDAR", false),

		CatalogFile: getEnv("CATALOG_FILE", ""),

		WhatsAppBaseURL:     getEnv("WHATSAPP_BASE_URL", "https://wa.me"),
		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "593"),

		PaymentQRImage:   getEnv("PAYMENT_QR_IMAGE", ""),
		PaymentQRPayload: getEnv("PAYMENT_QR_PAYLOAD", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Seven Barber Club"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
