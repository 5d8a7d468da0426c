// files.go — обработчики файловых операций: загрузка, выборка,
// листинг, публикация и отдача содержимого.
package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apierrors "github.com/bigkaa/files-manager/internal/api/errors"
	"github.com/bigkaa/files-manager/internal/api/middleware"
	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/service"
)

// PostUpload обрабатывает POST /files — создание папки или загрузку
// файла (содержимое в base64 внутри JSON-тела).
func (h *Handler) PostUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req createFileRequest
	if err := decodeBody(r, &req); err != nil {
		apierrors.ValidationError(w, "Missing name")
		return
	}

	file, sErr := h.files.Create(r.Context(), userID, service.CreateFileParams{
		Name:     req.Name,
		Type:     model.FileType(req.Type),
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusCreated, toFileResponse(file))
}

// GetShow обрабатывает GET /files/{id} — метаданные записи владельца.
func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	file, sErr := h.files.GetByID(r.Context(), userID, chi.URLParam(r, "id"))
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusOK, toFileResponse(file))
}

// GetIndex обрабатывает GET /files?parentId=&page= — постраничный
// листинг записей владельца. Страницы нумеруются с нуля, страница за
// пределами данных — пустой список.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	parentID := r.URL.Query().Get("parentId")

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	files, sErr := h.files.ListByParent(r.Context(), userID, parentID, page)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusOK, toFileResponses(files))
}

// PutPublish обрабатывает PUT /files/{id}/publish.
func (h *Handler) PutPublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

// PutUnpublish обрабатывает PUT /files/{id}/unpublish.
func (h *Handler) PutUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *Handler) setPublic(w http.ResponseWriter, r *http.Request, isPublic bool) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	file, sErr := h.files.SetPublic(r.Context(), userID, chi.URLParam(r, "id"), isPublic)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}

	h.writeJSON(w, http.StatusOK, toFileResponse(file))
}

// GetFile обрабатывает GET /files/{id}/data?size= — отдачу содержимого.
// Endpoint доступен без сессии: публичные файлы читаются анонимно,
// приватные — только владельцем. Токен, если передан, резолвится
// best effort.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	requesterID := h.optionalUser(r)

	width := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.ValidationError(w, "Invalid size")
			return
		}
		width = n
	}

	rc, file, sErr := h.files.ReadContent(r.Context(), requesterID, chi.URLParam(r, "id"), width)
	if sErr != nil {
		writeServiceError(w, sErr)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, rc); err != nil {
		// Заголовки уже отправлены, остаётся залогировать обрыв
		h.logger.Warn("Обрыв отдачи содержимого",
			slog.String("file_id", file.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

// optionalUser резолвит X-Token, если он передан. Отсутствующий или
// невалидный токен даёт нулевой идентификатор — анонимный доступ.
func (h *Handler) optionalUser(r *http.Request) primitive.ObjectID {
	token := r.Header.Get(middleware.TokenHeader)
	if token == "" {
		return primitive.NilObjectID
	}
	hexID, err := h.sessions.Resolve(r.Context(), token)
	if err != nil {
		return primitive.NilObjectID
	}
	userID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID
	}
	return userID
}
