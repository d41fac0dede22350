package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DB          DBConfig
	MinIO       MinIOConfig
	JWT         JWTConfig
	Server      ServerConfig
	InternalAPI InternalAPIConfig
	Redis       RedisConfig
	Audit       AuditConfig
	Friends     FriendsConfig
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// InternalAPIConfig locates the sibling platform services reached through
// internal requests.
type InternalAPIConfig struct {
	MessageURL string
	LoginURL   string
	Token      string
	Timeout    time.Duration
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	FriendsTTL time.Duration
}

type AuditConfig struct {
	ExportInterval  time.Duration
	QueueBufferSize int
}

type FriendsConfig struct {
	EnforceUnique bool
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "social"),
			Password: getEnv("DB_PASSWORD", "social_secret"),
			Name:     getEnv("DB_NAME", "social"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "social.db"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "social"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "social_secret"),
			Bucket:    getEnv("MINIO_BUCKET", "social"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		InternalAPI: InternalAPIConfig{
			MessageURL: strings.TrimRight(getEnv("MESSAGE_SERVICE_URL", "http://localhost:8081"), "/"),
			LoginURL:   strings.TrimRight(getEnv("LOGIN_SERVICE_URL", "http://localhost:8082"), "/"),
			Token:      getEnv("INTERNAL_API_TOKEN", ""),
			Timeout:    getEnvAsDuration("INTERNAL_API_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			FriendsTTL: getEnvAsDuration("REDIS_FRIENDS_TTL", 5*time.Minute),
		},
		Audit: AuditConfig{
			ExportInterval:  getEnvAsDuration("AUDIT_EXPORT_INTERVAL", 1*time.Hour),
			QueueBufferSize: getEnvAsInt("AUDIT_QUEUE_BUFFER_SIZE", 1000),
		},
		Friends: FriendsConfig{
			EnforceUnique: getEnvAsBool("FRIENDS_ENFORCE_UNIQUE", false),
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
