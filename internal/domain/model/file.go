// Пакет model — доменные модели Files Manager.
// File — единица иерархии хранения (папка, файл или изображение),
// хранится в коллекции files документной БД.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileType — тип записи в иерархии файлов.
type FileType string

const (
	// TypeFolder — папка, не имеет содержимого на диске
	TypeFolder FileType = "folder"
	// TypeFile — обычный файл
	TypeFile FileType = "file"
	// TypeImage — изображение, для него фоново генерируются thumbnail'ы
	TypeImage FileType = "image"
)

// ValidFileType проверяет, что тип входит в допустимый набор.
func ValidFileType(t FileType) bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// ThumbnailWidths — ширины thumbnail-вариантов, генерируемых для изображений.
var ThumbnailWidths = []int{500, 250, 100}

// File — запись о файле или папке.
//
// Инварианты:
//   - ParentID, если не nil, ссылается на существующую запись типа folder
//   - папка никогда не имеет LocalPath
//   - LocalPath и UserID неизменяемы после создания
//   - единственная мутация — переключение флага IsPublic
type File struct {
	// ID — уникальный идентификатор, присваивается при вставке
	ID primitive.ObjectID `bson:"_id,omitempty"`

	// UserID — владелец записи
	UserID primitive.ObjectID `bson:"user_id"`

	// Name — отображаемое имя
	Name string `bson:"name"`

	// Type — folder, file или image
	Type FileType `bson:"type"`

	// ParentID — родительская папка, nil = корень
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty"`

	// IsPublic — флаг публичной видимости (по умолчанию false)
	IsPublic bool `bson:"is_public"`

	// LocalPath — абсолютный путь содержимого на диске.
	// Пустой для папок.
	LocalPath string `bson:"local_path,omitempty"`

	// CreatedAt — время создания (UTC)
	CreatedAt time.Time `bson:"created_at"`
}

// IsFolder проверяет, является ли запись папкой.
func (f *File) IsFolder() bool {
	return f.Type == TypeFolder
}

// VisibleTo проверяет видимость содержимого для пользователя:
// владелец или публичный файл. Используется только при отдаче
// содержимого — листинг и метаданные строго owner-scoped.
func (f *File) VisibleTo(userID primitive.ObjectID) bool {
	return f.IsPublic || f.UserID == userID
}
