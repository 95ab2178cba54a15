package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DefaultAccountID int64

	OTLPEndpoint string

	DBType        string
	DBHost        string
	DBPort        string
	DBName        string
	DBUser        string
	DBPassword    string
	DBSSLMode     string
	DBMaxIdleConn int
	DBMaxOpenConn int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:          getenv("APP_SERVICE", "invopad"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      getenv("ENVIRONMENT", "development"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		LogLevel:         strings.ToLower(getenv("LOG_LEVEL", "info")),
		DefaultAccountID: getenvInt64("DEFAULT_ACCOUNT", 0),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:           getenv("DATABASE_TYPE", "postgres"),
		DBHost:           getenv("DATABASE_HOST", "localhost"),
		DBPort:           getenv("DATABASE_PORT", "5432"),
		DBName:           getenv("DATABASE_NAME", "invopad"),
		DBUser:           getenv("DATABASE_USER", "postgres"),
		DBPassword:       getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:        getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:    getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:    getenvInt("DATABASE_MAX_OPEN_CONN", 25),
	}
}

func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
