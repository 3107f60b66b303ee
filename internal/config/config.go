package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int

	StoreBackend     string
	DBDriver         string
	DBDataSourceName string
	MigrationsDir    string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	LowStockThreshold    int
	SeedSampleData       bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: could not load .env file, using environment")
	}

	config := &Config{}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.ServerPort = p
		}
	}
	if config.ServerPort == 0 {
		config.ServerPort = 8041
	}

	config.StoreBackend = getEnvOrDefault("POS_STORE_BACKEND", "memory")
	config.DBDriver = "postgres"

	dbHost := getEnvOrDefault("POS_DB_HOST", "localhost")
	dbPort := getEnvOrDefault("POS_DB_PORT", "5432")
	dbName := getEnvOrDefault("POS_DB_DATABASE", "posDB")
	dbUser := getEnvOrDefault("POS_DB_USERNAME", "pos")
	dbPassword := getEnvOrDefault("POS_DB_PASSWORD", "pos")

	config.DBDataSourceName = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName)
	config.MigrationsDir = getEnvOrDefault("MIGRATIONS_DIR", "migrations")

	config.RedisEnabled = getEnvOrDefault("POS_REDIS_ENABLED", "false") == "true"
	redisHost := getEnvOrDefault("POS_REDIS_HOST", "localhost")
	redisPort := getEnvOrDefault("POS_REDIS_PORT", "6379")
	config.RedisAddr = fmt.Sprintf("%s:%s", redisHost, redisPort)
	config.RedisPassword = os.Getenv("POS_REDIS_PASSWORD")
	if db := os.Getenv("POS_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.RedisDB = n
		}
	}

	config.SessionTTL = 2 * time.Hour
	config.SessionSweepInterval = 15 * time.Minute
	config.LowStockThreshold = 5
	config.SeedSampleData = getEnvOrDefault("POS_SEED_SAMPLE_DATA", "true") == "true"

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
