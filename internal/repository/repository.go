// Пакет repository — слой доступа к данным MongoDB.
// Коллекции: files (записи файловой иерархии), users (учётные записи).
// Клиент создаётся явно при старте и передаётся в репозитории —
// никаких глобальных синглтонов.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// Имена коллекций.
const (
	filesCollection = "files"
	usersCollection = "users"
)

// Connect создаёт клиент MongoDB и проверяет доступность через ping.
func Connect(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	logger.Info("Подключение к MongoDB установлено",
		slog.String("uri", uri),
	)

	return client, nil
}

// EnsureIndexes создаёт индексы коллекций: уникальность email,
// составной индекс для листинга по владельцу и родителю.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индекса users.email: %w", err)
	}

	_, err = db.Collection(filesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "parent_id", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индекса files.user_id+parent_id: %w", err)
	}

	return nil
}

// Pinger — проверка доступности MongoDB для /status.
type Pinger struct {
	client *mongo.Client
}

// NewPinger создаёт проверку доступности MongoDB.
func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping возвращает nil, если MongoDB отвечает.
func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}
