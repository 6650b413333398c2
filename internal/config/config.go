package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	Storage StorageConfig
	MinIO   MinIOConfig
	Badger  BadgerConfig
	Server  ServerConfig
	Live    LiveConfig
}

type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type StorageConfig struct {
	Backend   string
	URLSecret string
	URLExpiry time.Duration
}

type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	// Region skips the bucket location lookup when presigning.
	Region string
}

type BadgerConfig struct {
	// Path is the badger directory; empty keeps blobs in memory.
	Path string
}

type ServerConfig struct {
	Port        string
	SiteURL     string
	BodyLimitMB int
	CORSOrigins string
}

type LiveConfig struct {
	RedisURL  string
	Heartbeat time.Duration
}

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	StorageBackendBadger = "badger"
	StorageBackendMinIO  = "minio"
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DBDriverSQLite)),
			Path:     getEnv("DB_PATH", "groupchat.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "groupchat"),
			Password: getEnv("DB_PASSWORD", "groupchat_secret"),
			Name:     getEnv("DB_NAME", "groupchat"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendBadger)),
			URLSecret: getEnv("STORAGE_URL_SECRET", "change-me-in-production"),
			URLExpiry: getEnvAsDuration("STORAGE_URL_EXPIRY", 1*time.Hour),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", "groupchat"),
			SecretKey:      getEnv("MINIO_SECRET_KEY", "groupchat_secret"),
			Bucket:         getEnv("MINIO_BUCKET", "groupchat"),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
			Region:         getEnv("MINIO_REGION", "us-east-1"),
		},
		Badger: BadgerConfig{
			Path: getEnv("BADGER_PATH", "data/blobs"),
		},
		Server: ServerConfig{
			Port:        port,
			SiteURL:     strings.TrimRight(getEnv("SITE_URL", "http://localhost:"+port), "/"),
			BodyLimitMB: getEnvAsInt("SERVER_BODY_LIMIT_MB", 100),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Live: LiveConfig{
			RedisURL:  getEnv("REDIS_URL", ""),
			Heartbeat: getEnvAsDuration("LIVE_HEARTBEAT", 15*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
