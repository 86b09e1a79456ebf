package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"menu_needs_backend/pkg/utils"

	"github.com/joho/godotenv"
)

const (
	DefaultInsertBatchSize = 500
	DefaultListMaxLimit    = 500
)

// Config holds every runtime setting of the service.
type Config struct {
	Port           string
	AppEnv         string
	LogLevel       string
	JWTSecret      string
	AllowedOrigins []string
	Database       DatabaseConfig
	Needs          NeedsConfig
}

// DatabaseConfig describes the PostgreSQL connection and pool.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SchemaPath      string
}

// NeedsConfig tunes the menu-needs engine.
type NeedsConfig struct {
	InsertBatchSize int
	ListMaxLimit    int
}

// DSN renders the lib/pq key=value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Load reads the environment, loading a .env file first outside production.
func Load() *Config {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:           utils.Getenv("PORT", "8080"),
		AppEnv:         utils.Getenv("APP_ENV", "development"),
		LogLevel:       utils.Getenv("LOG_LEVEL", "info"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitOrigins(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		Database: DatabaseConfig{
			Host:            utils.Getenv("DB_HOST", "localhost"),
			Port:            utils.Getenv("DB_PORT", "5432"),
			User:            utils.Getenv("DB_USER", "cardapio_user"),
			Password:        utils.Getenv("DB_PASSWORD", "cardapio_password"),
			Name:            utils.Getenv("DB_NAME", "cardapio_db"),
			SSLMode:         utils.Getenv("DB_SSLMODE", "disable"),
			MaxOpenConns:    utils.GetenvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: utils.GetenvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			SchemaPath:      os.Getenv("DB_SCHEMA_PATH"),
		},
		Needs: NeedsConfig{
			InsertBatchSize: utils.GetenvInt("NEEDS_INSERT_BATCH_SIZE", DefaultInsertBatchSize),
			ListMaxLimit:    utils.GetenvInt("NEEDS_LIST_MAX_LIMIT", DefaultListMaxLimit),
		},
	}

	if cfg.JWTSecret == "" {
		utils.LogWarn("JWT_SECRET not set, using the built-in development secret")
	}
	return cfg
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
