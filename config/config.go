package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Places    PlacesConfig
	Cache     CacheConfig
	S3        S3Config
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	URL      string // postgres:// URL, takes precedence over the discrete fields
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig describes tokens issued by the external identity provider
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PlacesConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

type CacheConfig struct {
	NearbyCafesTTL time.Duration
	PreferencesTTL time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type SchedulerConfig struct {
	Enabled               bool
	CafeRefreshSpec       string
	CafeStaleAfter        time.Duration
	CafeRefreshBatch      int
	NotificationPurgeSpec string
	NotificationRetention time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("GOOGLE_PLACES_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GOOGLE_PLACES_RPS: %w", err)
	}

	refreshBatch, err := strconv.Atoi(getEnv("SCHEDULER_CAFE_REFRESH_BATCH", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_CAFE_REFRESH_BATCH: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", ""),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "sipit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Places: PlacesConfig{
			APIKey:            getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:           getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com/maps/api"),
			Timeout:           parseDuration(getEnv("GOOGLE_PLACES_TIMEOUT", "10s"), 10*time.Second),
			RequestsPerSecond: rps,
		},
		Cache: CacheConfig{
			NearbyCafesTTL: parseDuration(getEnv("CACHE_NEARBY_TTL", "5m"), 5*time.Minute),
			PreferencesTTL: parseDuration(getEnv("CACHE_PREFERENCES_TTL", "1h"), time.Hour),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "sipit-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:               getEnv("SCHEDULER_ENABLED", "true") == "true",
			CafeRefreshSpec:       getEnv("SCHEDULER_CAFE_REFRESH_SPEC", "0 4 * * *"),
			CafeStaleAfter:        parseDuration(getEnv("SCHEDULER_CAFE_STALE_AFTER", "168h"), 7*24*time.Hour),
			CafeRefreshBatch:      refreshBatch,
			NotificationPurgeSpec: getEnv("SCHEDULER_NOTIFICATION_PURGE_SPEC", "30 4 * * *"),
			NotificationRetention: parseDuration(getEnv("SCHEDULER_NOTIFICATION_RETENTION", "2160h"), 90*24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled: getEnv("METRICS_ENABLED", "true") == "true",
		},
	}

	return config, nil
}

// DSN returns a key/value connection string for the postgres driver.
// DATABASE_URL is converted with pq.ParseURL so both forms are accepted.
func (c *DatabaseConfig) DSN() (string, error) {
	if c.URL != "" {
		dsn, err := pq.ParseURL(c.URL)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		return dsn, nil
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	), nil
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
