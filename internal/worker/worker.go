// Пакет worker — консьюмер фоновых очередей.
//
// На каждую зарегистрированную очередь запускается отдельная горутина:
// Dequeue -> обработчик -> Ack при успехе. При ошибке обработчика
// задача возвращается через Nack; возможность повтора определяется
// классификацией ошибки (queue.IsFatal).
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/files-manager/internal/queue"
)

// dequeueRetryDelay — пауза перед повтором после ошибки Dequeue,
// чтобы не крутить цикл на лежащем Redis.
const dequeueRetryDelay = time.Second

var jobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fm_jobs_total",
		Help: "Обработанные фоновые задачи по очередям и результатам.",
	},
	[]string{"queue", "result"},
)

// Handler — обработчик одной задачи. Возвращаемая ошибка,
// обёрнутая в queue.Fatal, означает бесповторный отказ.
type Handler func(ctx context.Context, job *queue.Job) error

type consumer struct {
	name    string
	queue   queue.Queue
	handler Handler
}

// Worker — владелец консьюмерских горутин.
type Worker struct {
	consumers []consumer
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт Worker без запущенных консьюмеров.
func New(logger *slog.Logger) *Worker {
	return &Worker{
		logger: logger.With(slog.String("component", "worker")),
	}
}

// Register связывает очередь с обработчиком. Вызывать до Start.
func (w *Worker) Register(name string, q queue.Queue, h Handler) {
	w.consumers = append(w.consumers, consumer{name: name, queue: q, handler: h})
}

// Start запускает по горутине на каждую зарегистрированную очередь.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for _, c := range w.consumers {
		w.wg.Add(1)
		go func(c consumer) {
			defer w.wg.Done()
			w.run(ctx, c)
		}(c)
	}

	w.logger.Info("Worker запущен",
		slog.Int("queues", len(w.consumers)),
	)
}

// Stop останавливает консьюмеров и дожидается завершения текущих задач.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("Worker остановлен")
}

func (w *Worker) run(ctx context.Context, c consumer) {
	logger := w.logger.With(slog.String("queue", c.name))
	logger.Info("Консьюмер запущен")

	for {
		if ctx.Err() != nil {
			logger.Info("Консьюмер остановлен")
			return
		}

		job, err := c.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Консьюмер остановлен")
				return
			}
			logger.Error("Ошибка чтения из очереди",
				slog.String("error", err.Error()),
			)
			select {
			case <-ctx.Done():
			case <-time.After(dequeueRetryDelay):
			}
			continue
		}
		if job == nil {
			// Таймаут ожидания, очередь пуста
			continue
		}

		w.process(ctx, c, logger, job)
	}
}

func (w *Worker) process(ctx context.Context, c consumer, logger *slog.Logger, job *queue.Job) {
	logger = logger.With(
		slog.String("job_id", job.ID),
		slog.Int("attempts", job.Attempts),
	)

	err := c.handler(ctx, job)
	if err == nil {
		if aErr := c.queue.Ack(ctx, job); aErr != nil {
			logger.Error("Ошибка подтверждения задачи",
				slog.String("error", aErr.Error()),
			)
		}
		jobsTotal.WithLabelValues(c.name, "ok").Inc()
		logger.Debug("Задача обработана")
		return
	}

	retryable := !queue.IsFatal(err)
	result := "retried"
	if !retryable {
		result = "dead"
	}

	logger.Error("Ошибка обработки задачи",
		slog.Bool("retryable", retryable),
		slog.String("error", err.Error()),
	)

	if nErr := c.queue.Nack(ctx, job, retryable); nErr != nil {
		logger.Error("Ошибка возврата задачи в очередь",
			slog.String("error", nErr.Error()),
		)
	}
	jobsTotal.WithLabelValues(c.name, result).Inc()
}
