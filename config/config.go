package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBase = "http://127.0.0.1:8000"
	defaultPort    = 8080
	defaultTTL     = 30 * time.Minute
)

type Config struct {
	APIBase       string // адрес сервиса детекции
	Port          int    // порт веб-страницы
	TelegramToken string // пусто — бот не запускается
	LogDir        string // пусто — логи только в консоль
	SessionTTL    time.Duration
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		APIBase:       strings.TrimRight(getEnv("API_BASE", defaultAPIBase), "/"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogDir:        os.Getenv("LOG_DIR"),
	}

	port, err := getEnvAsInt("PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}
	cfg.Port = port

	ttl, err := getEnvAsDuration("SESSION_TTL", defaultTTL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}
	cfg.SessionTTL = ttl

	u, err := url.Parse(cfg.APIBase)
	if err != nil {
		return nil, fmt.Errorf("parse API_BASE: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("API_BASE must be an http(s) URL, got %q", cfg.APIBase)
	}

	return cfg, nil
}

// Addr адрес, на котором слушает веб-сервер
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
