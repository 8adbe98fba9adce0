// Package config loads runtime settings from the environment (.env supported)
// and holds the moderation policy constants.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Addr         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SendRateQPS limits message submissions per user; 0 disables the limiter.
	SendRateQPS int
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	// CookieName is the session cookie used by web clients.
	CookieName string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type NotifyConfig struct {
	Workers   int
	QueueSize int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	TelegramToken string
	// BaseURL prefixes notification action links.
	BaseURL string
}

// Load reads .env (if present) and the process environment.
// Keys are upper-cased with "." replaced by "_", e.g. SERVER_ADDR, REDIS_ADDR.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			Debug:        v.GetBool("server.debug"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			SendRateQPS:  v.GetInt("server.send_rate_qps"),
		},
		Postgres: PostgresConfig{DSN: v.GetString("postgres.dsn")},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			CookieName: v.GetString("auth.cookie_name"),
		},
		CORS: CORSConfig{AllowedOrigins: splitList(v.GetString("cors.allowed_origins"))},
		Notify: NotifyConfig{
			Workers:       v.GetInt("notify.workers"),
			QueueSize:     v.GetInt("notify.queue_size"),
			SMTPHost:      v.GetString("notify.smtp_host"),
			SMTPPort:      v.GetInt("notify.smtp_port"),
			SMTPUsername:  v.GetString("notify.smtp_username"),
			SMTPPassword:  v.GetString("notify.smtp_password"),
			EmailFrom:     v.GetString("notify.email_from"),
			TelegramToken: v.GetString("notify.telegram_token"),
			BaseURL:       v.GetString("notify.base_url"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is not set")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.send_rate_qps", 2)

	v.SetDefault("postgres.dsn", "host=localhost user=user password=password dbname=tutorchat port=5432 sslmode=disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.cookie_name", "session_token")

	v.SetDefault("cors.allowed_origins", "https://tutorchat.app,https://www.tutorchat.app,https://admin.tutorchat.app")

	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.email_from", "no-reply@tutorchat.app")
	v.SetDefault("notify.base_url", "https://tutorchat.app")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
