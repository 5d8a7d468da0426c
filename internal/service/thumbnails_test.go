package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/files-manager/internal/domain/model"
	"github.com/bigkaa/files-manager/internal/queue"
	"github.com/bigkaa/files-manager/internal/storage/filestore"
)

// testPNG возвращает base64 валидного PNG 800x600.
func testPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for x := 0; x < 800; x += 10 {
		for y := 0; y < 600; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("ошибка кодирования тестового PNG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestThumbnailService(t *testing.T) (*ThumbnailService, *FileService, *filestore.FileStore) {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}
	repo := newFakeFileRepo()
	files := NewFileService(repo, store, &fakeQueue{}, testLogger())
	return NewThumbnailService(repo, store, testLogger()), files, store
}

func TestThumbnailProcess(t *testing.T) {
	svc, files, store := newTestThumbnailService(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	img, cErr := files.Create(ctx, owner, CreateFileParams{
		Name: "pic.png",
		Type: model.TypeImage,
		Data: testPNG(t),
	})
	if cErr != nil {
		t.Fatalf("ошибка создания изображения: %v", cErr)
	}

	job := &queue.Job{UserID: owner.Hex(), FileID: img.ID.Hex()}
	if err := svc.Process(ctx, job); err != nil {
		t.Fatalf("ошибка обработки: %v", err)
	}

	for _, width := range model.ThumbnailWidths {
		path := store.DerivedPath(img.ID.Hex(), width)
		if !store.Exists(path) {
			t.Errorf("вариант %d не создан: %s", width, path)
			continue
		}
		rc, err := store.Open(path)
		if err != nil {
			t.Errorf("вариант %d не открывается: %v", width, err)
			continue
		}
		decoded, _, dErr := image.Decode(rc)
		rc.Close()
		if dErr != nil {
			t.Errorf("вариант %d не декодируется: %v", width, dErr)
			continue
		}
		if got := decoded.Bounds().Dx(); got != width {
			t.Errorf("ширина варианта = %d, ожидалась %d", got, width)
		}
	}

	// Повторная доставка безопасна
	if err := svc.Process(ctx, job); err != nil {
		t.Errorf("повторная обработка: %v", err)
	}
}

func TestThumbnailProcess_FatalErrors(t *testing.T) {
	svc, files, _ := newTestThumbnailService(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	notImage, _ := files.Create(ctx, owner, CreateFileParams{
		Name: "a.txt", Type: model.TypeFile, Data: encode("text"),
	})
	broken, _ := files.Create(ctx, owner, CreateFileParams{
		Name: "bad.png", Type: model.TypeImage, Data: encode("not an image"),
	})

	tests := []struct {
		name string
		job  *queue.Job
	}{
		{"без fileId", &queue.Job{UserID: owner.Hex()}},
		{"без userId", &queue.Job{FileID: notImage.ID.Hex()}},
		{"некорректный fileId", &queue.Job{UserID: owner.Hex(), FileID: "zzz"}},
		{"не изображение", &queue.Job{UserID: owner.Hex(), FileID: notImage.ID.Hex()}},
		{"нечитаемое изображение", &queue.Job{UserID: owner.Hex(), FileID: broken.ID.Hex()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Process(ctx, tc.job)
			if err == nil {
				t.Fatal("ожидалась ошибка")
			}
			if !queue.IsFatal(err) {
				t.Errorf("ошибка должна быть fatal: %v", err)
			}
		})
	}
}

func TestThumbnailProcess_RetryableErrors(t *testing.T) {
	svc, files, _ := newTestThumbnailService(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	img, _ := files.Create(ctx, owner, CreateFileParams{
		Name: "pic.png", Type: model.TypeImage, Data: testPNG(t),
	})

	tests := []struct {
		name string
		job  *queue.Job
	}{
		{"запись не найдена", &queue.Job{UserID: owner.Hex(), FileID: primitive.NewObjectID().Hex()}},
		{"чужая запись", &queue.Job{UserID: other.Hex(), FileID: img.ID.Hex()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Process(ctx, tc.job)
			if err == nil {
				t.Fatal("ожидалась ошибка")
			}
			if queue.IsFatal(err) {
				t.Errorf("ошибка должна допускать повтор: %v", err)
			}
		})
	}
}
