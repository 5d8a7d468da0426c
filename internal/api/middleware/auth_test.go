package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/files-manager/internal/session"
)

// fakeResolver — резолвер сессий по фиксированной таблице токенов.
type fakeResolver struct {
	tokens map[string]string
	err    error
}

func (r *fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	userID, ok := r.tokens[token]
	if !ok {
		return "", session.ErrNoSession
	}
	return userID, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runAuth(t *testing.T, resolver *fakeResolver, token string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	auth := NewTokenAuth(resolver, testLogger())
	handler := auth.Middleware()(next)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestTokenAuth_ValidToken(t *testing.T) {
	resolver := &fakeResolver{tokens: map[string]string{
		"tok-1": "507f1f77bcf86cd799439011",
	}}

	rec, userID := runAuth(t, resolver, "tok-1")

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
	if userID != "507f1f77bcf86cd799439011" {
		t.Errorf("user_id в контексте = %q", userID)
	}
}

func TestTokenAuth_MissingToken(t *testing.T) {
	rec, _ := runAuth(t, &fakeResolver{tokens: map[string]string{}}, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", rec.Code)
	}
}

func TestTokenAuth_UnknownToken(t *testing.T) {
	rec, _ := runAuth(t, &fakeResolver{tokens: map[string]string{}}, "nope")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", rec.Code)
	}
}

func TestTokenAuth_ResolverFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("redis down")}

	rec, _ := runAuth(t, resolver, "tok-1")

	// Инфраструктурная ошибка не маскируется под 401
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус = %d, ожидался 500", rec.Code)
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("пустой контекст дал %q", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"/status", "/status"},
		{"/files", "/files"},
		{"/files/507f1f77bcf86cd799439011", "/files/{id}"},
		{"/files/507f1f77bcf86cd799439011/data", "/files/{id}/data"},
		{"/files/507f1f77bcf86cd799439011/publish", "/files/{id}/publish"},
		{"/files/not-an-id", "/files/not-an-id"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.in); got != tc.out {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tc.in, got, tc.out)
		}
	}
}
