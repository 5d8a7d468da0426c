// Пакет config — загрузка и валидация конфигурации Files Manager
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Files Manager.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Корневая директория хранения файлов (FOLDER_PATH)
	FolderPath string
	// Хост MongoDB
	DBHost string
	// Порт MongoDB
	DBPort int
	// Имя базы данных
	DBName string
	// Хост Redis (сессии и очереди)
	RedisHost string
	// Порт Redis
	RedisPort int
	// Время жизни сессионного токена
	SessionTTL time.Duration
	// Таймаут блокирующего ожидания задачи воркером
	QueuePollTimeout time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// PORT — порт HTTP-сервера (по умолчанию 5000)
	port, err := getEnvInt("PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	// FOLDER_PATH — корень хранилища (по умолчанию /tmp/files_manager)
	cfg.FolderPath = getEnvDefault("FOLDER_PATH", "/tmp/files_manager")

	// DB_HOST — хост MongoDB (по умолчанию localhost)
	cfg.DBHost = getEnvDefault("DB_HOST", "localhost")

	// DB_PORT — порт MongoDB (по умолчанию 27017)
	cfg.DBPort, err = getEnvInt("DB_PORT", 27017)
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}

	// DB_DATABASE — имя базы (по умолчанию files_manager)
	cfg.DBName = getEnvDefault("DB_DATABASE", "files_manager")

	// REDIS_HOST — хост Redis (по умолчанию localhost)
	cfg.RedisHost = getEnvDefault("REDIS_HOST", "localhost")

	// REDIS_PORT — порт Redis (по умолчанию 6379)
	cfg.RedisPort, err = getEnvInt("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("REDIS_PORT: %w", err)
	}

	// SESSION_TTL — время жизни токена (по умолчанию 24h)
	cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	// QUEUE_POLL_TIMEOUT — таймаут ожидания задачи (по умолчанию 5s)
	cfg.QueuePollTimeout, err = getEnvDuration("QUEUE_POLL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("QUEUE_POLL_TIMEOUT: %w", err)
	}

	// SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	// LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	// LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	return cfg, nil
}

// MongoURI возвращает строку подключения к MongoDB.
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%d", c.DBHost, c.DBPort)
}

// RedisAddr возвращает адрес Redis в формате host:port.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 24h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
