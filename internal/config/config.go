package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"todo_bot/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	AppPort     string
	LogLevel    string
	LogJSON     bool

	// Повторные попытки подключения к БД на старте
	DBConnectRetries int
	DBConnectDelay   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Лимит команд на пользователя за окно
	RateLimit  int
	RateWindow time.Duration
}

// Load reads configuration from the environment (.env is merged in if
// present). A missing BOT_TOKEN is fatal; everything else has a default.
func Load() *Config {
	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = dsnFromParts()
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		BotToken:         botToken,
		DatabaseURL:      dbURL,
		AppPort:          port,
		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		DBConnectRetries: envInt("DB_CONNECT_RETRIES", 10),
		DBConnectDelay:   time.Duration(envInt("DB_CONNECT_DELAY", 3)) * time.Second,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		RateLimit:        envInt("RATE_LIMIT", 20),
		RateWindow:       time.Duration(envInt("RATE_WINDOW", 60)) * time.Second,
	}
}

// dsnFromParts assembles a Postgres DSN from the individual DB_* vars.
func dsnFromParts() string {
	host := envOr("DB_HOST", "127.0.0.1")
	user := envOr("DB_USER", "todo_user")
	pass := os.Getenv("DB_PASSWORD")
	name := envOr("DB_NAME", "todo_bot")

	return fmt.Sprintf("postgres://%s:%s@%s:5432/%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, name)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
