// files.go — репозиторий коллекции files.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bigkaa/files-manager/internal/domain/model"
)

// PageSize — фиксированный размер страницы листинга.
const PageSize = 20

// FileRepository — доступ к записям файловой иерархии.
type FileRepository struct {
	col *mongo.Collection
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db *mongo.Database) *FileRepository {
	return &FileRepository{col: db.Collection(filesCollection)}
}

// Insert вставляет новую запись и присваивает ей идентификатор.
func (r *FileRepository) Insert(ctx context.Context, f *model.File) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("ошибка вставки файла: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("неожиданный тип InsertedID: %T", res.InsertedID)
	}
	f.ID = id
	return nil
}

// GetByID возвращает запись по идентификатору без учёта владельца.
// Используется для валидации родителя и проверки видимости содержимого.
func (r *FileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.File, error) {
	var f model.File
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", id.Hex(), err)
	}
	return &f, nil
}

// GetOwned возвращает запись по идентификатору, принадлежащую userID.
func (r *FileRepository) GetOwned(ctx context.Context, userID, fileID primitive.ObjectID) (*model.File, error) {
	var f model.File
	err := r.col.FindOne(ctx, bson.M{"_id": fileID, "user_id": userID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", fileID.Hex(), err)
	}
	return &f, nil
}

// ListByParent возвращает страницу записей владельца userID с заданным
// родителем. parentID == nil означает корень. Страницы нумеруются с нуля,
// порядок стабильный (порядок вставки, сортировка по _id).
// Страница за пределами данных — пустой срез, не ошибка.
func (r *FileRepository) ListByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, page int) ([]*model.File, error) {
	if page < 0 {
		page = 0
	}

	// Для корня parent_id отсутствует в документе: $eq null
	// покрывает и отсутствующее поле, и явный null.
	filter := bson.M{
		"user_id":   userID,
		"parent_id": nil,
	}
	if parentID != nil {
		filter["parent_id"] = *parentID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page) * PageSize).
		SetLimit(PageSize)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка листинга файлов: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]*model.File, 0, PageSize)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("ошибка чтения курсора: %w", err)
	}
	return files, nil
}

// SetPublic обновляет флаг видимости записи владельца userID и возвращает
// обновлённую запись. Идемпотентна: повторная установка того же значения —
// успешный no-op. ErrNotFound, если запись не принадлежит userID.
func (r *FileRepository) SetPublic(ctx context.Context, userID, fileID primitive.ObjectID, isPublic bool) (*model.File, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f model.File
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": fileID, "user_id": userID},
		bson.M{"$set": bson.M{"is_public": isPublic}},
		opts,
	).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления видимости %s: %w", fileID.Hex(), err)
	}
	return &f, nil
}

// Count возвращает количество записей в коллекции files.
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}
	return n, nil
}
