// Package config loads the server settings from .env and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreSQL    = "sql"
	StoreMemory = "memory"
)

type Config struct {
	Port      string
	StoreType string

	MongoURI string
	MongoDB  string

	DBType            string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBDatabase        string
	DBConnectionLimit int

	JWTSecret string
	JWTExpiry time.Duration

	RedisURI string

	UploadDir      string
	MaxUploadMB    int
	AllowOrigins   string
	PublicBaseURL  string
	LoginRateLimit int

	SeedSampleForms bool

	DefaultAdminUsername string
	DefaultAdminEmail    string
	DefaultAdminPassword string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	cfg := &Config{
		Port:                 getEnv("APP_PORT", "8888"),
		StoreType:            strings.ToLower(getEnv("STORE_TYPE", StoreMongo)),
		MongoURI:             getEnv("MONGO_URI", ""),
		MongoDB:              getEnv("MONGO_DB", "FormCraftDB"),
		DBType:               strings.ToLower(getEnv("DB_TYPE", "postgres")),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", ""),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBDatabase:           getEnv("DB_DATABASE", ""),
		DBConnectionLimit:    getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpiry:            time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 720)) * time.Hour,
		RedisURI:             getEnv("REDIS_URI", ""),
		UploadDir:            getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB:          getEnvAsInt("MAX_UPLOAD_MB", 10),
		AllowOrigins:         getEnv("ALLOWED_ORIGINS", "*"),
		LoginRateLimit:       getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		SeedSampleForms:      getEnvAsBool("SEED_SAMPLE_FORMS", false),
		DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@example.com"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}

	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the chosen backend has what it needs.
func (c *Config) Validate() error {
	switch c.StoreType {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_TYPE is %s", StoreMongo)
		}
	case StoreSQL:
		if c.DBDatabase == "" {
			return fmt.Errorf("DB_DATABASE is required when STORE_TYPE is %s", StoreSQL)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_TYPE: %s", c.StoreType)
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the global size cap of a single uploaded file.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
