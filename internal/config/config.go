package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	BotAPIKey     string
	Port          string
	LogMode       string
	MaxDistanceKm float64
	AdminUserIDs  []string
}

func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "runlog.db"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		BotAPIKey:     getEnv("BOT_API_KEY", ""),
		Port:          getEnv("PORT", "8080"),
		LogMode:       getEnv("LOG_MODE", "dev"),
		MaxDistanceKm: getEnvFloat("MAX_DISTANCE_KM", 100),
		AdminUserIDs:  splitCSV(getEnv("ADMIN_USER_IDS", "")),
	}
}

// IsAdmin reports whether the external user id is on the admin allow-list.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
