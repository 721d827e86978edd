package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-admin-service/internal/models"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string
	CacheTTL time.Duration

	// NATS, empty disables event publishing
	NATSURL string

	// Auth
	JWTSecret          string
	CORSAllowedOrigins []string

	// Bulk upload
	BulkMaxItems             int
	BulkRateLimitPerMinute   int
	BulkRateLimitBurst       int
	UploadJobRetentionDays   int
	UploadJobCleanupSchedule string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "catalog_admin"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL: getEnvDuration("CACHE_TTL", 10*time.Minute),

		NATSURL: os.Getenv("NATS_URL"),

		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		BulkMaxItems:             getEnvInt("BULK_MAX_ITEMS", 500),
		BulkRateLimitPerMinute:   getEnvInt("BULK_RATE_LIMIT_PER_MINUTE", 30),
		BulkRateLimitBurst:       getEnvInt("BULK_RATE_LIMIT_BURST", 5),
		UploadJobRetentionDays:   getEnvInt("UPLOAD_JOB_RETENTION_DAYS", 30),
		UploadJobCleanupSchedule: getEnv("UPLOAD_JOB_CLEANUP_SCHEDULE", "0 3 * * *"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings that are unsafe outside development
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "your-secret-key") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.BulkMaxItems <= 0 {
		return fmt.Errorf("BULK_MAX_ITEMS must be positive, got %d", c.BulkMaxItems)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// NewLogger builds the JSON logrus logger used across the service
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsProduction() {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// InitDB opens the postgres connection and migrates the schema
func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("Running auto-migrations...")
	if err := models.Migrate(db); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not exist") && strings.Contains(errStr, "constraint") {
			log.WithError(err).Warn("Migration constraint warning, continuing")
		} else {
			return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}
	log.Info("Auto-migrations completed")

	return db, nil
}

// InitRedis connects to Redis. A nil client is returned when Redis is
// unreachable so the service runs without caching.
func InitRedis(cfg *Config, log *logrus.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Invalid REDIS_URL, caching disabled")
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, caching disabled")
		_ = client.Close()
		return nil
	}
	log.Info("Redis connected")
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
