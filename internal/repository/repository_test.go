package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bigkaa/files-manager/internal/domain/model"
)

// setupTestDB запускает MongoDB контейнер и создаёт индексы.
// Возвращает базу данных с очисткой через t.Cleanup.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "docker.io/mongo:7")
	if err != nil {
		t.Fatalf("Не удалось запустить MongoDB контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить connection string: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := Connect(ctx, uri, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Disconnect(context.Background()); err != nil {
			t.Logf("Ошибка отключения: %v", err)
		}
	})

	db := client.Database("files_manager_test")
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("Ошибка создания индексов: %v", err)
	}
	return db
}

// --- Тесты FileRepository ---

func TestFileRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(db)

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	folder := &model.File{
		UserID: owner,
		Name:   "documents",
		Type:   model.TypeFolder,
	}
	if err := repo.Insert(ctx, folder); err != nil {
		t.Fatalf("Insert() ошибка: %v", err)
	}
	if folder.ID.IsZero() {
		t.Fatal("идентификатор не присвоен")
	}
	if folder.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	file := &model.File{
		UserID:    owner,
		Name:      "hello.txt",
		Type:      model.TypeFile,
		ParentID:  &folder.ID,
		LocalPath: "/tmp/files_manager/abc",
	}
	if err := repo.Insert(ctx, file); err != nil {
		t.Fatalf("Insert() ошибка: %v", err)
	}

	// GetByID без учёта владельца
	got, err := repo.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Name != "hello.txt" || got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := repo.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() для несуществующей записи: %v", err)
	}

	// GetOwned учитывает владельца
	if _, err := repo.GetOwned(ctx, owner, file.ID); err != nil {
		t.Errorf("GetOwned() владельцем: %v", err)
	}
	if _, err := repo.GetOwned(ctx, other, file.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOwned() чужой записью: %v", err)
	}

	// SetPublic идемпотентна и возвращает обновлённую запись
	updated, err := repo.SetPublic(ctx, owner, file.ID, true)
	if err != nil {
		t.Fatalf("SetPublic() ошибка: %v", err)
	}
	if !updated.IsPublic {
		t.Error("IsPublic не установлен")
	}
	updated, err = repo.SetPublic(ctx, owner, file.ID, true)
	if err != nil || !updated.IsPublic {
		t.Errorf("повторный SetPublic(): %+v, %v", updated, err)
	}
	if _, err := repo.SetPublic(ctx, other, file.ID, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPublic() чужой записью: %v", err)
	}

	// Count
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, ожидалось 2", n)
	}
}

func TestFileRepository_ListByParent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(db)

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	folder := &model.File{UserID: owner, Name: "docs", Type: model.TypeFolder}
	if err := repo.Insert(ctx, folder); err != nil {
		t.Fatalf("Insert() ошибка: %v", err)
	}

	// PageSize+5 записей в папке, 1 в корне, 1 чужая
	for i := 0; i < PageSize+5; i++ {
		f := &model.File{
			UserID:   owner,
			Name:     fmt.Sprintf("file-%02d.txt", i),
			Type:     model.TypeFile,
			ParentID: &folder.ID,
		}
		if err := repo.Insert(ctx, f); err != nil {
			t.Fatalf("Insert() ошибка: %v", err)
		}
	}
	if err := repo.Insert(ctx, &model.File{UserID: other, Name: "alien.txt", Type: model.TypeFile, ParentID: &folder.ID}); err != nil {
		t.Fatalf("Insert() ошибка: %v", err)
	}

	// Корень: только папка
	root, err := repo.ListByParent(ctx, owner, nil, 0)
	if err != nil {
		t.Fatalf("ListByParent() ошибка: %v", err)
	}
	if len(root) != 1 || root[0].Name != "docs" {
		t.Errorf("листинг корня: %d записей", len(root))
	}

	// Первая страница папки заполнена
	page0, err := repo.ListByParent(ctx, owner, &folder.ID, 0)
	if err != nil {
		t.Fatalf("ListByParent() ошибка: %v", err)
	}
	if len(page0) != PageSize {
		t.Errorf("страница 0: %d записей, ожидалось %d", len(page0), PageSize)
	}

	// Вторая страница — остаток
	page1, err := repo.ListByParent(ctx, owner, &folder.ID, 1)
	if err != nil {
		t.Fatalf("ListByParent() ошибка: %v", err)
	}
	if len(page1) != 5 {
		t.Errorf("страница 1: %d записей, ожидалось 5", len(page1))
	}

	// Стабильный порядок: страницы не пересекаются
	if page0[len(page0)-1].ID == page1[0].ID {
		t.Error("страницы пересекаются")
	}

	// Страница за пределами данных
	empty, err := repo.ListByParent(ctx, owner, &folder.ID, 5)
	if err != nil {
		t.Fatalf("ListByParent() ошибка: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("страница за пределами данных: %d записей", len(empty))
	}

	// Отрицательная страница трактуется как первая
	neg, err := repo.ListByParent(ctx, owner, &folder.ID, -1)
	if err != nil {
		t.Fatalf("ListByParent() ошибка: %v", err)
	}
	if len(neg) != PageSize {
		t.Errorf("отрицательная страница: %d записей", len(neg))
	}
}

// --- Тесты UserRepository ---

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &model.User{
		Email:        "bob@dylan.com",
		PasswordHash: "89cad29e3ebc1035b29b1478a8e70854f25fa2b2",
	}
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("Insert() ошибка: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("идентификатор не присвоен")
	}

	// Дублирующийся email отбивается уникальным индексом
	dup := &model.User{Email: "bob@dylan.com", PasswordHash: "x"}
	if err := repo.Insert(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Insert() дубликата: %v, ожидался ErrConflict", err)
	}

	got, err := repo.GetByEmail(ctx, "bob@dylan.com")
	if err != nil {
		t.Fatalf("GetByEmail() ошибка: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() id = %s", got.ID.Hex())
	}

	if _, err := repo.GetByEmail(ctx, "nobody@dylan.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail() неизвестного: %v", err)
	}

	if _, err := repo.GetByID(ctx, u.ID); err != nil {
		t.Errorf("GetByID() ошибка: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, ожидалось 1", n)
	}
}
