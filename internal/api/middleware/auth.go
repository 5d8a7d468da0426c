// auth.go — middleware аутентификации по токену сессии.
// Токен передаётся в заголовке X-Token, резолвится в идентификатор
// пользователя через хранилище сессий и помещается в контекст запроса.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/files-manager/internal/api/errors"
	"github.com/bigkaa/files-manager/internal/session"
)

// TokenHeader — заголовок с токеном сессии.
const TokenHeader = "X-Token"

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// contextKeyUserID — hex-идентификатор пользователя в контексте запроса.
const contextKeyUserID contextKey = "user_id"

// IdentityResolver — резолвинг токена в идентификатор пользователя.
// Реализуется session.Store.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// TokenAuth — middleware аутентификации по X-Token.
type TokenAuth struct {
	sessions IdentityResolver
	logger   *slog.Logger
}

// NewTokenAuth создаёт middleware аутентификации.
func NewTokenAuth(sessions IdentityResolver, logger *slog.Logger) *TokenAuth {
	return &TokenAuth{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "token_auth")),
	}
}

// Middleware возвращает HTTP middleware: извлекает X-Token, резолвит
// сессию и помещает идентификатор пользователя в контекст.
// Отсутствующий, пустой или неизвестный токен — единый 401 без
// различения причин.
func (a *TokenAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				apierrors.Unauthorized(w)
				return
			}

			userID, err := a.sessions.Resolve(r.Context(), token)
			if errors.Is(err, session.ErrNoSession) {
				apierrors.Unauthorized(w)
				return
			}
			if err != nil {
				a.logger.Error("Ошибка резолвинга сессии",
					slog.String("error", err.Error()),
				)
				apierrors.InternalError(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext извлекает hex-идентификатор пользователя из
// контекста запроса. Пустая строка, если middleware не отработал.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(contextKeyUserID).(string)
	return userID
}
