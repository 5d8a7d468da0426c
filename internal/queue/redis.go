// redis.go — транспорт очереди поверх Redis-списков.
//
// Паттерн reliable queue: LPUSH в pending, блокирующий BLMOVE
// pending → processing, LREM из processing при Ack/Nack. Упавший
// воркер оставляет задачу в processing — её видно и можно вернуть
// в очередь внешним инструментом; ядро гарантирует только корректную
// сигнализацию успеха/неуспеха.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue — именованная очередь поверх Redis.
type RedisQueue struct {
	client      *redis.Client
	name        string
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewRedis создаёт очередь с именем name.
// pollTimeout — таймаут блокирующего ожидания в Dequeue.
func NewRedis(client *redis.Client, name string, pollTimeout time.Duration, logger *slog.Logger) *RedisQueue {
	return &RedisQueue{
		client:      client,
		name:        name,
		pollTimeout: pollTimeout,
		logger:      logger.With(slog.String("component", "queue"), slog.String("queue", name)),
	}
}

// Name возвращает имя очереди.
func (q *RedisQueue) Name() string {
	return q.name
}

func (q *RedisQueue) pendingKey() string {
	return "queue:" + q.name + ":pending"
}

func (q *RedisQueue) processingKey() string {
	return "queue:" + q.name + ":processing"
}

func (q *RedisQueue) deadKey() string {
	return "queue:" + q.name + ":dead"
}

// Enqueue сериализует задачу и помещает её в pending-список.
// Идентификатор присваивается, если не задан.
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи: %w", err)
	}

	if err := q.client.LPush(ctx, q.pendingKey(), payload).Err(); err != nil {
		return fmt.Errorf("ошибка постановки задачи в очередь %s: %w", q.name, err)
	}

	q.logger.Debug("Задача поставлена в очередь",
		slog.String("job_id", job.ID),
	)
	return nil
}

// Dequeue блокирующе перемещает задачу из pending в processing.
// Возвращает (nil, nil), если за pollTimeout задач не появилось.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	raw, err := q.client.BLMove(ctx, q.pendingKey(), q.processingKey(), "RIGHT", "LEFT", q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из очереди %s: %w", q.name, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Нечитаемый payload невозможно обработать и повторять — в dead-letter
		q.logger.Error("Нечитаемая задача перемещена в dead-letter",
			slog.String("error", err.Error()),
		)
		q.moveToDead(ctx, []byte(raw))
		return nil, nil
	}

	job.raw = []byte(raw)
	return &job, nil
}

// Ack подтверждает обработку: удаляет задачу из processing-списка.
func (q *RedisQueue) Ack(ctx context.Context, job *Job) error {
	if err := q.client.LRem(ctx, q.processingKey(), 1, job.raw).Err(); err != nil {
		return fmt.Errorf("ошибка подтверждения задачи %s: %w", job.ID, err)
	}
	return nil
}

// Nack убирает задачу из processing и либо возвращает её в pending
// с инкрементом счётчика попыток (retryable), либо перемещает
// в dead-letter список.
func (q *RedisQueue) Nack(ctx context.Context, job *Job, retryable bool) error {
	if err := q.client.LRem(ctx, q.processingKey(), 1, job.raw).Err(); err != nil {
		return fmt.Errorf("ошибка снятия задачи %s с обработки: %w", job.ID, err)
	}

	if !retryable {
		q.moveToDead(ctx, job.raw)
		return nil
	}

	retry := *job
	retry.Attempts++
	payload, err := json.Marshal(retry)
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи для повтора: %w", err)
	}

	if err := q.client.LPush(ctx, q.pendingKey(), payload).Err(); err != nil {
		return fmt.Errorf("ошибка возврата задачи %s в очередь: %w", job.ID, err)
	}

	q.logger.Warn("Задача возвращена в очередь для повтора",
		slog.String("job_id", job.ID),
		slog.Int("attempts", retry.Attempts),
	)
	return nil
}

// moveToDead помещает payload в dead-letter список. Best effort.
func (q *RedisQueue) moveToDead(ctx context.Context, payload []byte) {
	if err := q.client.LPush(ctx, q.deadKey(), payload).Err(); err != nil {
		q.logger.Error("Ошибка записи в dead-letter",
			slog.String("error", err.Error()),
		)
	}
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ Queue = (*RedisQueue)(nil)
