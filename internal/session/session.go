// Пакет session — хранилище сессионных токенов в Redis.
// Токен — непрозрачная строка (UUID v4), привязанная к идентификатору
// пользователя под ключом auth_<token> с ограниченным временем жизни.
// Истечение TTL обрабатывает сам Redis — просроченный токен просто
// отсутствует при чтении.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix — пространство имён ключей сессий в Redis.
const keyPrefix = "auth_"

// ErrNoSession — токен не найден или просрочен.
var ErrNoSession = errors.New("сессия не найдена")

// Store — хранилище сессий поверх Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New создаёт хранилище сессий. ttl — время жизни токена.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Connect создаёт клиент Redis и проверяет доступность через ping.
func Connect(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	logger.Info("Подключение к Redis установлено",
		slog.String("addr", addr),
	)

	return client, nil
}

// Create генерирует новый токен и привязывает его к userID на время ttl.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()

	if err := s.client.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("ошибка записи сессии: %w", err)
	}

	s.logger.Debug("Сессия создана",
		slog.String("user_id", userID),
	)
	return token, nil
}

// Resolve возвращает идентификатор пользователя по токену.
// ErrNoSession, если токен неизвестен или просрочен.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return userID, nil
}

// Delete удаляет токен. Удаление несуществующего токена — ErrNoSession.
func (s *Store) Delete(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, keyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}

// Ping проверяет доступность Redis для /status.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
