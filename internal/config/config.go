package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LocalTimezone      string
	HTTPClientTimeout  time.Duration
	WebhookAuthToken   string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Airtable record store
	AirtableBaseURL       string
	AirtableBaseID        string
	AirtableVenuesTable   string
	AirtableBookingsTable string
	AirtableToken         string
	VenueCapacityField    string

	// Gemini reply generation
	GeminiAPIKey string
	GeminiModel  string

	// Email
	EmailProvider  string
	EmailFromEmail string
	EmailFromName  string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	SendGridAPIKey string
	BrochureURL    string

	// AWS (SES transport)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SESConfigurationSet string

	// Redis finalize guard
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	FinalizeGuardTTL time.Duration

	TablePricePerGuest float64
	PriceCurrency      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LocalTimezone:      getEnv("LOCAL_TIMEZONE", "Asia/Dubai"),
		HTTPClientTimeout:  getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second),
		WebhookAuthToken:   getEnv("WEBHOOK_AUTH_TOKEN", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		AirtableBaseURL:       getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
		AirtableBaseID:        getEnv("AIRTABLE_BASE_ID", ""),
		AirtableVenuesTable:   getEnv("AIRTABLE_VENUES_TABLE", "Venues"),
		AirtableBookingsTable: getEnv("AIRTABLE_BOOKINGS_TABLE", "Bookings"),
		AirtableToken:         getEnv("AIRTABLE_TOKEN", ""),
		VenueCapacityField:    strings.ToLower(strings.TrimSpace(getEnv("VENUE_CAPACITY_FIELD", "standing"))),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		EmailFromEmail: getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Venue Bookings"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		BrochureURL:    getEnv("BROCHURE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SESConfigurationSet: getEnv("SES_CONFIGURATION_SET", ""),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		FinalizeGuardTTL: getEnvAsDuration("FINALIZE_GUARD_TTL", 24*time.Hour),

		TablePricePerGuest: getEnvAsFloat("TABLE_PRICE_PER_GUEST", 0),
		PriceCurrency:      getEnv("PRICE_CURRENCY", "AED"),
	}
}

// EmailConfigured reports whether any mail transport has enough settings to send.
// Without one the brochure email is silently disabled.
func (c *Config) EmailConfigured() bool {
	if strings.TrimSpace(c.BrochureURL) == "" || strings.TrimSpace(c.EmailFromEmail) == "" {
		return false
	}
	switch c.EmailProvider {
	case "smtp":
		return c.SMTPHost != ""
	case "sendgrid":
		return c.SendGridAPIKey != ""
	case "ses":
		return c.AWSRegion != ""
	case "log":
		return true
	default:
		return c.SMTPHost != "" || c.SendGridAPIKey != ""
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

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
