// Пакет queue — абстракция очереди фоновых задач с доставкой
// at-least-once и транспорт поверх Redis-списков.
//
// Контракт потребителя: Dequeue → обработка → Ack при успехе,
// Nack при ошибке. Nack с retryable=true возвращает задачу в очередь
// (политика повторов — на стороне очереди), с retryable=false —
// перемещает в dead-letter список.
package queue

import (
	"context"
	"errors"
	"fmt"
)

// Имена очередей. Фиксированы контрактом клиентов и воркера.
const (
	// FileQueue — генерация thumbnail'ов: payload {userId, fileId}
	FileQueue = "fileQueue"
	// UserQueue — post-signup provisioning: payload {userId}
	UserQueue = "userQueue"
)

// Job — асинхронная единица работы.
type Job struct {
	// ID — идентификатор задачи (UUID v4), присваивается при Enqueue
	ID string `json:"id"`
	// UserID — идентификатор пользователя
	UserID string `json:"userId,omitempty"`
	// FileID — идентификатор файла (только fileQueue)
	FileID string `json:"fileId,omitempty"`
	// Attempts — количество уже выполненных попыток обработки
	Attempts int `json:"attempts"`

	// raw — сериализованное представление, каким задача лежит
	// в processing-списке. Нужен для точного LREM при Ack/Nack.
	raw []byte
}

// Queue — очередь задач.
type Queue interface {
	// Enqueue помещает задачу в очередь.
	Enqueue(ctx context.Context, job Job) error
	// Dequeue блокирующе ожидает задачу до таймаута транспорта.
	// (nil, nil) — таймаут без задач, не ошибка.
	Dequeue(ctx context.Context) (*Job, error)
	// Ack подтверждает успешную обработку.
	Ack(ctx context.Context, job *Job) error
	// Nack сообщает о неуспехе. retryable=true — вернуть в очередь,
	// false — в dead-letter.
	Nack(ctx context.Context, job *Job, retryable bool) error
}

// FatalError — невосстановимая ошибка обработки задачи
// (некорректный payload). Задача не должна повторяться.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("невосстановимая ошибка: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal оборачивает ошибку как невосстановимую.
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// IsFatal проверяет, помечена ли ошибка как невосстановимая.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
