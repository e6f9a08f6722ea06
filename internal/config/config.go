package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	SQLitePath  string
	DBDebug     bool
	RedisURL    string

	SessionSecret string
	SessionName   string
	SessionTTL    time.Duration
	CookieSecure  bool

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	AllowOverfunding  bool
	CancelWindow      time.Duration
	RateLimitDonation time.Duration
	BcryptCost        int

	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "5555"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "elimufund.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SessionSecret: os.Getenv("SECRET_KEY"),
		SessionName:   getEnv("SESSION_COOKIE_NAME", "elimufund_session"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "elimufund"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@elimufund.com"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.DBDebug, err = parseBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = parseBool("SESSION_COOKIE_SECURE", cfg.IsProduction()); err != nil {
		return nil, err
	}
	if cfg.AllowOverfunding, err = parseBool("ALLOW_OVERFUNDING", true); err != nil {
		return nil, err
	}

	cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.CancelWindow, err = time.ParseDuration(getEnv("DONATION_CANCEL_WINDOW", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DONATION_CANCEL_WINDOW: %w", err)
	}
	cfg.RateLimitDonation, err = time.ParseDuration(getEnv("RATE_LIMIT_DONATION", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DONATION: %w", err)
	}

	cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SECRET_KEY is required in production")
		}
		cfg.SessionSecret = "elimufund-dev-secret-change-me"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
