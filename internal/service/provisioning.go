// provisioning.go — обработчик задач userQueue: post-signup side effect
// (приветственное уведомление), отвязанный от синхронного ответа
// регистрации. Эффект идемпотентен — повторная доставка безопасна.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
)

// ProvisioningService — post-signup provisioning.
type ProvisioningService struct {
	users  UserRepo
	logger *slog.Logger
}

// NewProvisioningService создаёт сервис provisioning-задач.
func NewProvisioningService(users UserRepo, logger *slog.Logger) *ProvisioningService {
	return &ProvisioningService{
		users:  users,
		logger: logger.With(slog.String("component", "provisioning_service")),
	}
}

// Process обрабатывает одну задачу {userId}.
// Отсутствующий userId — fatal; отсутствующий пользователь — retryable
// (запись могла ещё не реплицироваться).
func (s *ProvisioningService) Process(ctx context.Context, job *queue.Job) error {
	if job.UserID == "" {
		return queue.Fatal(errors.New("Missing userId"))
	}

	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return queue.Fatal(fmt.Errorf("некорректный userId %q: %w", job.UserID, err))
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.New("User not found")
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения пользователя %s: %w", job.UserID, err)
	}

	s.logger.Info(fmt.Sprintf("Welcome %s!", user.Email),
		slog.String("user_id", job.UserID),
	)
	return nil
}
