// users.go — сервис учётных записей: регистрация с постановкой
// provisioning-задачи и проверка учётных данных для выдачи токена.
package service

import (
	"context"
	"crypto/sha1" //nolint:gosec // совместимость с существующими хэшами паролей
	"encoding/hex"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
)

// UserRepo — операции хранилища метаданных, нужные сервису пользователей.
// Реализуется repository.UserRepository.
type UserRepo interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService — сервис учётных записей.
type UserService struct {
	users     UserRepo
	userQueue Enqueuer
	logger    *slog.Logger
}

// NewUserService создаёт сервис пользователей.
// userQueue — очередь userQueue для post-signup задач.
func NewUserService(users UserRepo, userQueue Enqueuer, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		userQueue: userQueue,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Create регистрирует пользователя и ставит provisioning-задачу.
// Задача ставится после фиксации записи, best effort: неуспех
// логируется и не влияет на ответ.
func (s *UserService) Create(ctx context.Context, email, password string) (*model.User, *Error) {
	if email == "" {
		return nil, errValidation("Missing email")
	}
	if password == "" {
		return nil, errValidation("Missing password")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashPassword(password),
	}

	err := s.users.Insert(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return nil, errConflict("Already exist")
	}
	if err != nil {
		s.logger.Error("Ошибка создания пользователя",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}

	if err := s.userQueue.Enqueue(ctx, queue.Job{UserID: user.ID.Hex()}); err != nil {
		s.logger.Error("Ошибка постановки provisioning-задачи",
			slog.String("user_id", user.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", user.ID.Hex()),
	)

	return user, nil
}

// Authenticate проверяет email и пароль. Unauthorized при любом
// несовпадении, без уточнения причины.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, *Error) {
	if email == "" || password == "" {
		return nil, errUnauthorized()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errUnauthorized()
	}
	if err != nil {
		s.logger.Error("Ошибка поиска пользователя",
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}

	if user.PasswordHash != hashPassword(password) {
		return nil, errUnauthorized()
	}
	return user, nil
}

// GetByID возвращает пользователя по идентификатору сессии.
func (s *UserService) GetByID(ctx context.Context, userID primitive.ObjectID) (*model.User, *Error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errUnauthorized()
	}
	if err != nil {
		s.logger.Error("Ошибка чтения пользователя",
			slog.String("user_id", userID.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}
	return user, nil
}

// hashPassword возвращает SHA1-хэш пароля в hex.
func hashPassword(password string) string {
	sum := sha1.Sum([]byte(password)) //nolint:gosec // совместимость с существующей схемой хэшей
	return hex.EncodeToString(sum[:])
}
