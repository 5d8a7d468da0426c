// system.go — сервисные обработчики: /status и /stats.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// pingTimeout — таймаут проверки одной зависимости для /status.
const pingTimeout = 2 * time.Second

// GetStatus обрабатывает GET /status — доступность зависимостей.
// Ответ всегда 200, недоступность отражается в booleans.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	dbOK := h.db.Ping(ctx) == nil
	cacheOK := h.cache.Ping(ctx) == nil

	h.writeJSON(w, http.StatusOK, map[string]bool{
		"redis": cacheOK,
		"db":    dbOK,
	})
}

// GetStats обрабатывает GET /stats — количество пользователей и записей.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.userCount.Count(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта пользователей",
			slog.String("error", err.Error()),
		)
		users = 0
	}

	files, err := h.fileCount.Count(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта записей",
			slog.String("error", err.Error()),
		)
		files = 0
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{
		"users": users,
		"files": files,
	})
}
