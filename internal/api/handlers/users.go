// users.go — обработчики учётных записей: регистрация и профиль.
package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apierrors "github.com/bigkaa/files-manager/internal/api/errors"
	"github.com/bigkaa/files-manager/internal/api/middleware"
)

// PostNew обрабатывает POST /users — регистрацию пользователя.
func (h *Handler) PostNew(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		apierrors.ValidationError(w, "Missing email")
		return
	}

	user, sErr := h.users.Create(r.Context(), req.Email, req.Password)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// GetMe обрабатывает GET /users/me — профиль владельца сессии.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	user, sErr := h.users.GetByID(r.Context(), userID)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(user))
}

// requireUser извлекает идентификатор пользователя, положенный в
// контекст auth-middleware. Отсутствие или некорректность — 401.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	hexID := middleware.UserIDFromContext(r.Context())
	if hexID == "" {
		apierrors.Unauthorized(w)
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		apierrors.Unauthorized(w)
		return primitive.NilObjectID, false
	}
	return userID, true
}
