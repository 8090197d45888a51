package database

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
	HTTPPort       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

// LoadConfig reads .env when present and falls back to process env vars
// with defaults. A missing .env file is not an error. An empty REDIS_ADDR
// disables the product cache.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "app_user"),
		Password:       getEnv("DB_PASSWORD", "postgres_password"),
		DBName:         getEnv("DB_NAME", "orders_db"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/database/migrations"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
	}, nil
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
