// auth.go — обработчики жизненного цикла сессии: выдача и отзыв токена.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/files-manager/internal/api/errors"
	"github.com/bigkaa/files-manager/internal/api/middleware"
	"github.com/bigkaa/files-manager/internal/service"
	"github.com/bigkaa/files-manager/internal/session"
)

// GetConnect обрабатывает GET /connect — обмен учётных данных
// (Basic Auth) на сессионный токен.
func (h *Handler) GetConnect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		apierrors.Unauthorized(w)
		return
	}

	user, sErr := h.users.Authenticate(r.Context(), email, password)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID.Hex())
	if err != nil {
		h.logger.Error("Ошибка создания сессии",
			slog.String("user_id", user.ID.Hex()),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetDisconnect обрабатывает GET /disconnect — отзыв токена.
// Токен после отзыва недействителен немедленно.
func (h *Handler) GetDisconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.TokenHeader)
	if token == "" {
		apierrors.Unauthorized(w)
		return
	}

	err := h.sessions.Delete(r.Context(), token)
	if errors.Is(err, session.ErrNoSession) {
		apierrors.Unauthorized(w)
		return
	}
	if err != nil {
		h.logger.Error("Ошибка удаления сессии",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody разбирает JSON-тело запроса.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
func writeServiceError(w http.ResponseWriter, e *service.Error) {
	apierrors.WriteError(w, e.StatusCode, e.Code, e.Message)
}
