package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	CORSOrigins []string
	CacheTTL    time.Duration

	// Sheet layout.
	SheetName           string
	SettlementHeaderRow int
	DropFooterRow       bool
	IncludeGuideType    bool
}

// Load reads .env (if present) and the process environment.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() *AppConfig {
	return &AppConfig{
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=cargo_expreso_control port=5432 sslmode=disable"),
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		CacheTTL:            getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		SheetName:           getEnv("SHEET_NAME", ""),
		SettlementHeaderRow: getEnvAsInt("SETTLEMENT_HEADER_ROW", 9),
		DropFooterRow:       getEnvAsBool("DROP_FOOTER_ROW", true),
		IncludeGuideType:    getEnvAsBool("INCLUDE_GUIDE_TYPE", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback)
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
