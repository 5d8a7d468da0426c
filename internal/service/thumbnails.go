// thumbnails.go — обработчик задач fileQueue: генерация трёх
// thumbnail-вариантов изображения (ширины 500, 250, 100).
//
// Классификация ошибок для очереди:
//   - отсутствующие поля payload, нечитаемое изображение — fatal
//     (queue.Fatal), повтор бессмыслен;
//   - отсутствующая запись или исходный файл — retryable, запись
//     могла ещё не успеть реплицироваться.
//
// Три варианта генерируются независимо и конкурентно; неуспех одного
// не мешает остальным, но задача в целом считается неуспешной, если
// не сгенерирован хотя бы один.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/repository"
	"github.com/bigkaa/files-manager/internal/storage/filestore"
)

// ThumbnailService — генерация thumbnail-артефактов.
type ThumbnailService struct {
	files  FileRepo
	store  *filestore.FileStore
	logger *slog.Logger
}

// NewThumbnailService создаёт сервис thumbnail-генерации.
func NewThumbnailService(files FileRepo, store *filestore.FileStore, logger *slog.Logger) *ThumbnailService {
	return &ThumbnailService{
		files:  files,
		store:  store,
		logger: logger.With(slog.String("component", "thumbnail_service")),
	}
}

// Process обрабатывает одну задачу {userId, fileId}.
// Артефакты пишутся атомарно по детерминированным путям, повторная
// доставка задачи безопасна (idempotent overwrite).
func (s *ThumbnailService) Process(ctx context.Context, job *queue.Job) error {
	if job.FileID == "" {
		return queue.Fatal(errors.New("Missing fileId"))
	}
	if job.UserID == "" {
		return queue.Fatal(errors.New("Missing userId"))
	}

	fileID, err := primitive.ObjectIDFromHex(job.FileID)
	if err != nil {
		return queue.Fatal(fmt.Errorf("некорректный fileId %q: %w", job.FileID, err))
	}
	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return queue.Fatal(fmt.Errorf("некорректный userId %q: %w", job.UserID, err))
	}

	file, err := s.files.GetByID(ctx, fileID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.New("File not found")
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения записи %s: %w", job.FileID, err)
	}
	if file.UserID != userID {
		return errors.New("File not found")
	}
	if file.Type != model.TypeImage {
		return queue.Fatal(fmt.Errorf("запись %s имеет тип %s, thumbnail неприменим", job.FileID, file.Type))
	}

	src, err := s.store.Open(file.LocalPath)
	if err != nil {
		if filestore.IsNotExist(err) {
			// Исходник мог ещё не доехать до диска — даём очереди повторить
			return fmt.Errorf("исходный файл отсутствует: %s", file.LocalPath)
		}
		return fmt.Errorf("ошибка открытия исходника: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return queue.Fatal(fmt.Errorf("нечитаемое изображение %s: %w", job.FileID, err))
	}

	// Варианты независимы: ошибки собираются, генерация не прерывается
	var wg sync.WaitGroup
	errs := make([]error, len(model.ThumbnailWidths))

	for i, width := range model.ThumbnailWidths {
		wg.Add(1)
		go func(i, width int) {
			defer wg.Done()
			errs[i] = s.writeVariant(fileID.Hex(), img, format, width)
		}(i, width)
	}
	wg.Wait()

	var failed int
	for i, e := range errs {
		if e == nil {
			continue
		}
		failed++
		s.logger.Error("Ошибка генерации thumbnail",
			slog.String("file_id", job.FileID),
			slog.Int("width", model.ThumbnailWidths[i]),
			slog.String("error", e.Error()),
		)
	}
	if failed > 0 {
		return fmt.Errorf("не сгенерировано вариантов: %d из %d", failed, len(model.ThumbnailWidths))
	}

	s.logger.Info("Thumbnail'ы сгенерированы",
		slog.String("file_id", job.FileID),
		slog.Int("variants", len(model.ThumbnailWidths)),
	)
	return nil
}

// writeVariant генерирует один вариант: resize с сохранением пропорций,
// кодирование в исходный формат и атомарная запись на диск.
func (s *ThumbnailService) writeVariant(fileID string, img image.Image, format string, width int) error {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encodingFormat(format)); err != nil {
		return fmt.Errorf("ошибка кодирования: %w", err)
	}

	if _, err := s.store.WriteDerived(fileID, width, &buf); err != nil {
		return fmt.Errorf("ошибка записи артефакта: %w", err)
	}
	return nil
}

// encodingFormat подбирает формат кодирования по имени формата
// из image.Decode. Неизвестные форматы кодируются в PNG.
func encodingFormat(format string) imaging.Format {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return imaging.PNG
	}
	return f
}
