// files.go — сервис жизненного цикла файлов: создание с валидацией
// и записью на диск, выборка, листинг, переключение видимости,
// отдача содержимого и thumbnail-вариантов.
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
	"github.com/bigkaa/files-manager/internal/storage/filestore"
)

// RootParentID — значение parentId, обозначающее корень иерархии.
const RootParentID = "0"

// FileRepo — операции хранилища метаданных, нужные сервису файлов.
// Реализуется repository.FileRepository.
type FileRepo interface {
	Insert(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.File, error)
	GetOwned(ctx context.Context, userID, fileID primitive.ObjectID) (*model.File, error)
	ListByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, page int) ([]*model.File, error)
	SetPublic(ctx context.Context, userID, fileID primitive.ObjectID, isPublic bool) (*model.File, error)
}

// Enqueuer — постановка фоновой задачи. Реализуется queue.RedisQueue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// CreateFileParams — параметры создания записи.
// Значения по умолчанию: ParentID = корень, IsPublic = false.
type CreateFileParams struct {
	// Name — отображаемое имя (обязательно)
	Name string
	// Type — folder, file или image (обязательно)
	Type model.FileType
	// ParentID — hex-идентификатор родительской папки, "0" или пусто = корень
	ParentID string
	// IsPublic — начальная видимость
	IsPublic bool
	// Data — содержимое в base64 (обязательно для file и image)
	Data string
}

// FileService — сервис жизненного цикла файлов.
type FileService struct {
	files      FileRepo
	store      *filestore.FileStore
	thumbQueue Enqueuer
	logger     *slog.Logger
}

// NewFileService создаёт сервис файлов.
// thumbQueue — очередь fileQueue для задач thumbnail-генерации.
func NewFileService(files FileRepo, store *filestore.FileStore, thumbQueue Enqueuer, logger *slog.Logger) *FileService {
	return &FileService{
		files:      files,
		store:      store,
		thumbQueue: thumbQueue,
		logger:     logger.With(slog.String("component", "file_service")),
	}
}

// Create валидирует параметры и создаёт запись.
//
// Поток для file/image:
//  1. Валидация имени, типа, данных, родителя
//  2. Декодирование base64 и запись содержимого на диск
//  3. Вставка записи в хранилище метаданных
//  4. Для image — best-effort постановка thumbnail-задачи
//
// Постановка задачи выполняется строго после фиксации записи; её
// неуспех логируется, но не откатывает создание и не влияет на ответ.
func (s *FileService) Create(ctx context.Context, userID primitive.ObjectID, p CreateFileParams) (*model.File, *Error) {
	if p.Name == "" {
		return nil, errValidation("Missing name")
	}
	if !model.ValidFileType(p.Type) {
		return nil, errValidation("Missing type")
	}

	var content []byte
	if p.Type != model.TypeFolder {
		if p.Data == "" {
			return nil, errValidation("Missing data")
		}
		decoded, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, errValidation("Missing data")
		}
		content = decoded
	}

	parentID, vErr := s.resolveParent(ctx, p.ParentID)
	if vErr != nil {
		return nil, vErr
	}

	file := &model.File{
		UserID:   userID,
		Name:     p.Name,
		Type:     p.Type,
		ParentID: parentID,
		IsPublic: p.IsPublic,
	}

	if p.Type != model.TypeFolder {
		path, size, err := s.store.Save(bytes.NewReader(content))
		if err != nil {
			s.logger.Error("Ошибка записи содержимого на диск",
				slog.String("name", p.Name),
				slog.String("error", err.Error()),
			)
			return nil, errInternal()
		}
		file.LocalPath = path

		s.logger.Debug("Содержимое записано",
			slog.String("path", path),
			slog.Int64("size", size),
		)
	}

	if err := s.files.Insert(ctx, file); err != nil {
		// Запись метаданных не состоялась — содержимое на диске осиротело
		if file.LocalPath != "" {
			_ = os.Remove(file.LocalPath)
		}
		s.logger.Error("Ошибка вставки записи",
			slog.String("name", p.Name),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}

	if p.Type == model.TypeImage {
		job := queue.Job{
			UserID: userID.Hex(),
			FileID: file.ID.Hex(),
		}
		if err := s.thumbQueue.Enqueue(ctx, job); err != nil {
			// Запись уже зафиксирована: постановка задачи best effort
			s.logger.Error("Ошибка постановки thumbnail-задачи",
				slog.String("file_id", file.ID.Hex()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("Запись создана",
		slog.String("file_id", file.ID.Hex()),
		slog.String("type", string(file.Type)),
		slog.String("user_id", userID.Hex()),
	)

	return file, nil
}

// resolveParent проверяет родителя: "0" или пусто — корень, иначе
// hex-идентификатор существующей записи типа folder.
func (s *FileService) resolveParent(ctx context.Context, parentID string) (*primitive.ObjectID, *Error) {
	if parentID == "" || parentID == RootParentID {
		return nil, nil
	}

	id, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, errValidation("Parent is not a folder")
	}

	parent, err := s.files.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errValidation("Parent is not a folder")
	}
	if err != nil {
		s.logger.Error("Ошибка чтения родителя",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}
	if !parent.IsFolder() {
		return nil, errValidation("Parent is not a folder")
	}

	return &id, nil
}

// GetByID возвращает запись владельца. Метаданные строго owner-scoped:
// чужие записи не видны по id даже публичные.
func (s *FileService) GetByID(ctx context.Context, userID primitive.ObjectID, fileID string) (*model.File, *Error) {
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, errNotFound()
	}

	file, err := s.files.GetOwned(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		s.logger.Error("Ошибка чтения записи",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}
	return file, nil
}

// ListByParent возвращает страницу записей владельца с заданным
// родителем. Страницы нумеруются с нуля; страница за пределами
// данных — пустой список, не ошибка.
func (s *FileService) ListByParent(ctx context.Context, userID primitive.ObjectID, parentID string, page int) ([]*model.File, *Error) {
	var parent *primitive.ObjectID
	if parentID != "" && parentID != RootParentID {
		id, err := primitive.ObjectIDFromHex(parentID)
		if err != nil {
			// Некорректный parentId — пустой список, не ошибка
			return []*model.File{}, nil
		}
		parent = &id
	}

	files, err := s.files.ListByParent(ctx, userID, parent, page)
	if err != nil {
		s.logger.Error("Ошибка листинга",
			slog.String("parent_id", parentID),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}
	return files, nil
}

// SetPublic переключает флаг видимости записи владельца и возвращает
// обновлённую запись. Идемпотентна. NotFound для чужих и
// несуществующих записей.
func (s *FileService) SetPublic(ctx context.Context, userID primitive.ObjectID, fileID string, isPublic bool) (*model.File, *Error) {
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, errNotFound()
	}

	file, err := s.files.SetPublic(ctx, userID, id, isPublic)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		s.logger.Error("Ошибка переключения видимости",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return nil, errInternal()
	}
	return file, nil
}

// ReadContent открывает содержимое записи: оригинал (width == 0) или
// thumbnail-вариант заданной ширины.
//
// Политика видимости содержимого: владелец или публичная запись.
// Папка содержимого не имеет. Отсутствующий на диске файл (в том
// числе ещё не сгенерированный thumbnail) — NotFound.
// Вызывающий код обязан закрыть ReadCloser.
func (s *FileService) ReadContent(ctx context.Context, requesterID primitive.ObjectID, fileID string, width int) (io.ReadCloser, *model.File, *Error) {
	if width != 0 && !slices.Contains(model.ThumbnailWidths, width) {
		return nil, nil, errValidation("Invalid size")
	}

	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, errNotFound()
	}

	file, err := s.files.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errNotFound()
	}
	if err != nil {
		s.logger.Error("Ошибка чтения записи",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return nil, nil, errInternal()
	}

	if !file.VisibleTo(requesterID) {
		return nil, nil, errNotFound()
	}
	if file.IsFolder() {
		return nil, nil, errInvalidOperation("A folder doesn't have content")
	}

	path := file.LocalPath
	if width != 0 {
		path = s.store.DerivedPath(id.Hex(), width)
	}
	if path == "" {
		return nil, nil, errNotFound()
	}

	rc, err := s.store.Open(path)
	if err != nil {
		if filestore.IsNotExist(err) {
			return nil, nil, errNotFound()
		}
		s.logger.Error("Ошибка открытия содержимого",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return nil, nil, errInternal()
	}

	return rc, file, nil
}
