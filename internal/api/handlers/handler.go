// Пакет handlers — HTTP-обработчики API Files Manager.
// Обработчики тонкие: разбор запроса, вызов сервиса, сериализация
// ответа. Бизнес-правила живут в пакете service.
package handlers

import (
	"context"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/service"
)

// UserService — операции сервиса пользователей, нужные API.
type UserService interface {
	Create(ctx context.Context, email, password string) (*model.User, *service.Error)
	Authenticate(ctx context.Context, email, password string) (*model.User, *service.Error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, *service.Error)
}

// FileService — операции сервиса файлов, нужные API.
type FileService interface {
	Create(ctx context.Context, userID primitive.ObjectID, p service.CreateFileParams) (*model.File, *service.Error)
	GetByID(ctx context.Context, userID primitive.ObjectID, fileID string) (*model.File, *service.Error)
	ListByParent(ctx context.Context, userID primitive.ObjectID, parentID string, page int) ([]*model.File, *service.Error)
	SetPublic(ctx context.Context, userID primitive.ObjectID, fileID string, isPublic bool) (*model.File, *service.Error)
	ReadContent(ctx context.Context, requesterID primitive.ObjectID, fileID string, width int) (io.ReadCloser, *model.File, *service.Error)
}

// SessionManager — жизненный цикл сессионных токенов.
// Реализуется session.Store.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Pinger — проверка доступности зависимости для /status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter — количество записей в коллекции для /stats.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Handler — обработчики HTTP API.
type Handler struct {
	users    UserService
	files    FileService
	sessions SessionManager

	db    Pinger
	cache Pinger

	userCount Counter
	fileCount Counter

	logger *slog.Logger
}

// New создаёт Handler со всеми зависимостями.
func New(
	users UserService,
	files FileService,
	sessions SessionManager,
	db, cache Pinger,
	userCount, fileCount Counter,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		users:     users,
		files:     files,
		sessions:  sessions,
		db:        db,
		cache:     cache,
		userCount: userCount,
		fileCount: fileCount,
		logger:    logger.With(slog.String("component", "api")),
	}
}
