package config

import "os"

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	AdminPasswordHash string

	// SES email settings. Leaving SESRegion empty disables outbound email;
	// the send endpoint then reports a retryable failure.
	SESRegion      string
	SESAccessKeyID string
	SESSecretKey   string
	SenderEmail    string
	QuoteRecipient string
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8082"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SESRegion:         getEnv("SES_REGION", ""),
		SESAccessKeyID:    getEnv("SES_ACCESS_KEY_ID", ""),
		SESSecretKey:      getEnv("SES_SECRET_ACCESS_KEY", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", ""),
		QuoteRecipient:    getEnv("QUOTE_RECIPIENT", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
