// Пакет errors — конструкторы стандартных ошибок API Files Manager.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib допустим внутри api

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// Unauthorized — 401 отсутствующий, неизвестный или просроченный токен.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// InvalidOperation — 400 операция не имеет смысла для типа записи.
func InvalidOperation(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidOperation, message)
}

// NotFound — 404 запись отсутствует или не видна запрашивающему.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "Not found")
}

// Conflict — 400 дублирующийся ресурс (email уже занят).
// Оригинальный контракт отдаёт 400, а не 409.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeConflict, message)
}

// InternalError — 500 внутренняя ошибка без утечки деталей.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, "Internal Server Error")
}
