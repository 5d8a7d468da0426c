// Пакет service — бизнес-логика Files Manager.
// errors.go — ошибка сервисного слоя с HTTP-кодом.
package service

import (
	"fmt"
	"net/http"

	apierrors "github.com/bigkaa/files-manager/internal/api/errors"
)

// Error — ошибка бизнес-логики, переводимая в HTTP-ответ без
// дополнительной интерпретации. Внутренние детали (ошибки БД, диска)
// в Message не попадают — они логируются в месте возникновения.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// --- Конструкторы ---

// errValidation — 400 некорректные входные данные.
func errValidation(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       apierrors.CodeValidationError,
		Message:    message,
	}
}

// errInvalidOperation — 400 операция не имеет смысла для типа записи.
func errInvalidOperation(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       apierrors.CodeInvalidOperation,
		Message:    message,
	}
}

// errConflict — 400 дублирующийся ресурс.
func errConflict(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       apierrors.CodeConflict,
		Message:    message,
	}
}

// errNotFound — 404 запись отсутствует или не видна запрашивающему.
func errNotFound() *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       apierrors.CodeNotFound,
		Message:    "Not found",
	}
}

// errUnauthorized — 401 неверные учётные данные.
func errUnauthorized() *Error {
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       apierrors.CodeUnauthorized,
		Message:    "Unauthorized",
	}
}

// errInternal — 500 внутренняя ошибка без утечки деталей.
func errInternal() *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       apierrors.CodeInternalError,
		Message:    "Internal Server Error",
	}
}
