package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User — учётная запись. Создаётся при регистрации,
// внутри сервиса файлов — только для чтения.
type User struct {
	// ID — уникальный идентификатор
	ID primitive.ObjectID `bson:"_id,omitempty"`

	// Email — уникальный адрес
	Email string `bson:"email"`

	// PasswordHash — SHA1-хэш пароля (hex)
	PasswordHash string `bson:"password"`

	// CreatedAt — время регистрации (UTC)
	CreatedAt time.Time `bson:"created_at"`
}
