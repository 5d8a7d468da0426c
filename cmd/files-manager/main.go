// Точка входа Files Manager — HTTP API управления файлами.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/files-manager/internal/api/handlers"
	"github.com/bigkaa/files-manager/internal/api/middleware"
	"github.com/bigkaa/files-manager/internal/config"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
	"github.com/bigkaa/files-manager/internal/server"
	"github.com/bigkaa/files-manager/internal/service"
	"github.com/bigkaa/files-manager/internal/session"
	"github.com/bigkaa/files-manager/internal/storage/filestore"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Files Manager запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("folder_path", cfg.FolderPath),
	)

	ctx := context.Background()

	// --- Инициализация компонентов ---

	// 1. MongoDB
	mongoClient, err := repository.Connect(ctx, cfg.MongoURI(), logger)
	if err != nil {
		logger.Error("Ошибка подключения к MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if dErr := mongoClient.Disconnect(context.Background()); dErr != nil {
			logger.Error("Ошибка отключения от MongoDB", slog.String("error", dErr.Error()))
		}
	}()

	db := mongoClient.Database(cfg.DBName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Error("Ошибка создания индексов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Redis: сессии и очереди
	redisClient, err := session.Connect(ctx, cfg.RedisAddr(), logger)
	if err != nil {
		logger.Error("Ошибка подключения к Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cErr := redisClient.Close(); cErr != nil {
			logger.Error("Ошибка закрытия клиента Redis", slog.String("error", cErr.Error()))
		}
	}()

	sessions := session.New(redisClient, cfg.SessionTTL, logger)
	fileQueue := queue.NewRedis(redisClient, queue.FileQueue, cfg.QueuePollTimeout, logger)
	userQueue := queue.NewRedis(redisClient, queue.UserQueue, cfg.QueuePollTimeout, logger)

	// 3. Файловое хранилище
	store, err := filestore.New(cfg.FolderPath)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Репозитории и сервисы
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)

	fileSvc := service.NewFileService(fileRepo, store, fileQueue, logger)
	userSvc := service.NewUserService(userRepo, userQueue, logger)

	// 5. Handlers и middleware
	apiHandler := handlers.New(
		userSvc,
		fileSvc,
		sessions,
		repository.NewPinger(mongoClient),
		sessions,
		userRepo,
		fileRepo,
		logger,
	)
	auth := middleware.NewTokenAuth(sessions, logger)

	// 6. Запуск HTTP-сервера
	srv := server.New(cfg, apiHandler, auth, logger)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Files Manager остановлен")
}
