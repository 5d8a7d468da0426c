// dto.go — структуры запросов и ответов API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/service"
)

// flexibleID — идентификатор, принимаемый и как JSON-строка, и как
// число. Клиенты исторически передают parentId: 0 для корня.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// createUserRequest — тело POST /users.
type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// createFileRequest — тело POST /files.
type createFileRequest struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	ParentID flexibleID `json:"parentId"`
	IsPublic bool       `json:"isPublic"`
	Data     string     `json:"data"`
}

// userResponse — представление пользователя в API.
// Хэш пароля наружу не отдаётся.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:    u.ID.Hex(),
		Email: u.Email,
	}
}

// fileResponse — представление записи в API.
// Корень кодируется как parentId "0".
type fileResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsPublic  bool   `json:"isPublic"`
	ParentID  string `json:"parentId"`
	LocalPath string `json:"localPath,omitempty"`
}

func toFileResponse(f *model.File) fileResponse {
	parentID := service.RootParentID
	if f.ParentID != nil {
		parentID = f.ParentID.Hex()
	}
	return fileResponse{
		ID:        f.ID.Hex(),
		UserID:    f.UserID.Hex(),
		Name:      f.Name,
		Type:      string(f.Type),
		IsPublic:  f.IsPublic,
		ParentID:  parentID,
		LocalPath: f.LocalPath,
	}
}

func toFileResponses(files []*model.File) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	return out
}

// writeJSON сериализует ответ со статусом statusCode.
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Ошибка сериализации ответа",
			slog.String("error", err.Error()),
		)
	}
}
