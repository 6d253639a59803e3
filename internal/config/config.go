package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// WhatsAppConfig holds the Meta Graph API credentials for the WhatsApp
// transport adapter.
type WhatsAppConfig struct {
	BaseURL       string
	Token         string
	PhoneNumberID string
	VerifyToken   string
}

// EmailConfig holds the SMTP credentials for the email transport adapter.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SocialConfig holds the credentials for one social platform.
type SocialConfig struct {
	Platform string
	BaseURL  string
	Token    string
	PageID   string
}

type Config struct {
	Port     string
	APIToken string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	WhatsApp WhatsAppConfig
	Email    EmailConfig
	Social   []SocialConfig

	// SocialPlatform names which entry of Social backs the social channel.
	SocialPlatform string

	// Dispatch behavior
	DispatchConcurrency int
	DispatchSkipSent    bool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		APIToken: getEnv("API_TOKEN", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "crm"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		WhatsApp: WhatsAppConfig{
			BaseURL:       getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
			Token:         getEnv("WHATSAPP_TOKEN", ""),
			PhoneNumberID: getEnv("PHONE_NUMBER_ID", ""),
			VerifyToken:   getEnv("VERIFY_TOKEN", ""),
		},
		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},

		SocialPlatform: getEnv("SOCIAL_PLATFORM", ""),

		DispatchConcurrency: getEnvInt("DISPATCH_CONCURRENCY", 1),
		DispatchSkipSent:    getEnvBool("DISPATCH_SKIP_SENT", true),
	}

	// One social platform per set of credentials; the active platform is
	// selected by SOCIAL_PLATFORM at adapter construction.
	for _, platform := range []string{"facebook", "instagram", "twitter"} {
		prefix := "SOCIAL_" + strings.ToUpper(platform)
		token := getEnv(prefix+"_TOKEN", "")
		if token == "" {
			continue
		}
		cfg.Social = append(cfg.Social, SocialConfig{
			Platform: platform,
			BaseURL:  getEnv(prefix+"_API_URL", ""),
			Token:    token,
			PageID:   getEnv(prefix+"_PAGE_ID", ""),
		})
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid boolean for %s, using default %v", key, fallback)
	}
	return fallback
}
