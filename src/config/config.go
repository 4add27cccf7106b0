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
	Port         string
	DatabasePath string
	LogLevel     string

	MaxUploadSizeBytes   int64
	MaxFilesPerUpload    int
	MaxConcurrentDecodes int

	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	DefaultBank string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")
	Cfg = fromEnv()
	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, MaxFiles=%d",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.MaxFilesPerUpload)
}

func fromEnv() *AppConfig {
	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil || maxUploadSizeBytes <= 0 {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	rateStr := getEnv("RATE_LIMIT_PER_SECOND", "5")
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || rate <= 0 {
		log.Printf("WARNING: Invalid RATE_LIMIT_PER_SECOND '%s'. Using default 5. Error: %v", rateStr, err)
		rate = 5
	}

	cfg := &AppConfig{
		Port:                   getEnv("PORT", "8080"),
		DatabasePath:           getEnv("DATABASE_PATH", "./gstfolio.db"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes:     maxUploadSizeBytes,
		MaxFilesPerUpload:      getEnvAsInt("MAX_FILES_PER_UPLOAD", 20),
		MaxConcurrentDecodes:   getEnvAsInt("MAX_CONCURRENT_DECODES", 4),
		SessionTTL:             getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		AllowedOrigins:         splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerSecond:     rate,
		RateLimitBurst:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		DefaultBank:            getEnv("DEFAULT_BANK", "ANZ"),
	}
	if cfg.MaxConcurrentDecodes < 1 {
		cfg.MaxConcurrentDecodes = 1
	}
	if cfg.MaxFilesPerUpload < 1 {
		cfg.MaxFilesPerUpload = 1
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
