// Пакет server — HTTP-сервер Files Manager с graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/files-manager/internal/api/handlers"
	"github.com/bigkaa/files-manager/internal/api/middleware"
	"github.com/bigkaa/files-manager/internal/config"
)

// Server — HTTP-сервер Files Manager.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// NewRouter собирает chi-роутер со всеми маршрутами API.
// Открытые endpoints: /status, /stats, /metrics, регистрация, /connect
// и отдача содержимого (видимость проверяет сервисный слой).
// Остальные маршруты требуют валидный X-Token.
func NewRouter(h *handlers.Handler, auth *middleware.TokenAuth, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/status", h.GetStatus)
	router.Get("/stats", h.GetStats)
	router.Post("/users", h.PostNew)
	router.Get("/connect", h.GetConnect)
	router.Handle("/metrics", promhttp.Handler())

	// Содержимое отдаётся без обязательной сессии: публичные файлы
	// читаются анонимно, токен резолвится best effort в обработчике
	router.Get("/files/{id}/data", h.GetFile)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Get("/disconnect", h.GetDisconnect)
		r.Get("/users/me", h.GetMe)

		r.Post("/files", h.PostUpload)
		r.Get("/files", h.GetIndex)
		r.Get("/files/{id}", h.GetShow)
		r.Put("/files/{id}/publish", h.PutPublish)
		r.Put("/files/{id}/unpublish", h.PutUnpublish)
	})

	return router
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, h *handlers.Handler, auth *middleware.TokenAuth, logger *slog.Logger) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(h, auth, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown с таймаутом
// из конфигурации.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
