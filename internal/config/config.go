package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the storefront API.
type Config struct {
	AppPort string

	DatabaseDriver    string
	DatabaseDSN       string
	MongoURI          string
	MongoDatabase     string
	DBConnectAttempts int
	DBConnectBackoff  time.Duration

	JWTSecret          string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	RabbitMQURL string
	RedisURL    string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFromName string
	AdminEmail   string

	UploadDir      string
	UploadMaxBytes int64

	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
	CORSOrigins          string

	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromViper(viper.New()), nil
}

// FromViper applies defaults to v and builds a Config from it.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		AppPort:              v.GetString("APP_PORT"),
		DatabaseDriver:       strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDatabase:        v.GetString("MONGO_DATABASE"),
		DBConnectAttempts:    v.GetInt("DB_CONNECT_ATTEMPTS"),
		DBConnectBackoff:     v.GetDuration("DB_CONNECT_BACKOFF"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		RefreshTokenSecret:   v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:       v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:      v.GetDuration("REFRESH_TOKEN_TTL"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		RedisURL:             v.GetString("REDIS_URL"),
		SMTPHost:             v.GetString("SMTP_HOST"),
		SMTPPort:             v.GetString("SMTP_PORT"),
		SMTPUser:             v.GetString("SMTP_USER"),
		SMTPPassword:         v.GetString("SMTP_PASSWORD"),
		MailFromName:         v.GetString("MAIL_FROM_NAME"),
		AdminEmail:           v.GetString("ADMIN_EMAIL"),
		UploadDir:            v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:       v.GetInt64("UPLOAD_MAX_BYTES"),
		RateLimitWindow:      v.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		CORSOrigins:          v.GetString("CORS_ORIGINS"),
		ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5001")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=gnsons port=5432 sslmode=disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "gnsons")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 3)
	v.SetDefault("DB_CONNECT_BACKOFF", 2*time.Second)
	v.SetDefault("JWT_SECRET", "your-secret-key")
	v.SetDefault("REFRESH_TOKEN_SECRET", "refresh-secret-key")
	v.SetDefault("ACCESS_TOKEN_TTL", time.Hour)
	v.SetDefault("REFRESH_TOKEN_TTL", 30*24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "465")
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM_NAME", "GN SONS")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001,http://localhost:3002,http://localhost:3003,http://localhost:5173,http://localhost:5174")
	v.SetDefault("SHUTDOWN_TIMEOUT", time.Duration(0))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}
