// Точка входа worker — консьюмер фоновых очередей Files Manager:
// генерация thumbnail'ов (fileQueue) и provisioning пользователей
// (userQueue).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigkaa/files-manager/internal/config"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
	"github.com/bigkaa/files-manager/internal/service"
	"github.com/bigkaa/files-manager/internal/session"
	"github.com/bigkaa/files-manager/internal/storage/filestore"
	"github.com/bigkaa/files-manager/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("Worker запускается",
		slog.String("version", config.Version),
		slog.String("folder_path", cfg.FolderPath),
	)

	ctx := context.Background()

	// MongoDB
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

	// Redis: очереди
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

	fileQueue := queue.NewRedis(redisClient, queue.FileQueue, cfg.QueuePollTimeout, logger)
	userQueue := queue.NewRedis(redisClient, queue.UserQueue, cfg.QueuePollTimeout, logger)

	// Файловое хранилище
	store, err := filestore.New(cfg.FolderPath)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Обработчики задач
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)

	thumbSvc := service.NewThumbnailService(fileRepo, store, logger)
	provisionSvc := service.NewProvisioningService(userRepo, logger)

	w := worker.New(logger)
	w.Register(queue.FileQueue, fileQueue, thumbSvc.Process)
	w.Register(queue.UserQueue, userQueue, provisionSvc.Process)
	w.Start(ctx)

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))

	w.Stop()
	logger.Info("Worker остановлен")
}
