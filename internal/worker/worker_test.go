package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/files-manager/internal/queue"
)

// fakeChanQueue — очередь на канале для тестов консьюмера.
type fakeChanQueue struct {
	jobs chan queue.Job

	mu     sync.Mutex
	acked  []string
	nacked []string
	// retryable по job.ID из последнего Nack
	retry map[string]bool
}

func newFakeChanQueue() *fakeChanQueue {
	return &fakeChanQueue{
		jobs:  make(chan queue.Job, 16),
		retry: make(map[string]bool),
	}
}

func (q *fakeChanQueue) Enqueue(_ context.Context, job queue.Job) error {
	q.jobs <- job
	return nil
}

func (q *fakeChanQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job := <-q.jobs:
		return &job, nil
	case <-time.After(50 * time.Millisecond):
		return nil, nil
	}
}

func (q *fakeChanQueue) Ack(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, job.ID)
	return nil
}

func (q *fakeChanQueue) Nack(_ context.Context, job *queue.Job, retryable bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nacked = append(q.nacked, job.ID)
	q.retry[job.ID] = retryable
	return nil
}

var _ queue.Queue = (*fakeChanQueue)(nil)

func (q *fakeChanQueue) ackedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

func (q *fakeChanQueue) nackedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.nacked...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("условие не выполнено за отведённое время")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_AckOnSuccess(t *testing.T) {
	q := newFakeChanQueue()

	var mu sync.Mutex
	var handled []string

	w := New(testLogger())
	w.Register("fileQueue", q, func(_ context.Context, job *queue.Job) error {
		mu.Lock()
		handled = append(handled, job.FileID)
		mu.Unlock()
		return nil
	})

	w.Start(context.Background())
	defer w.Stop()

	q.Enqueue(context.Background(), queue.Job{ID: "j1", FileID: "f1"})

	waitFor(t, func() bool { return len(q.ackedIDs()) == 1 })

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || handled[0] != "f1" {
		t.Errorf("обработано %v, ожидался [f1]", handled)
	}
	if len(q.nackedIDs()) != 0 {
		t.Errorf("неожиданный Nack: %v", q.nackedIDs())
	}
}

func TestWorker_NackRetryable(t *testing.T) {
	q := newFakeChanQueue()

	w := New(testLogger())
	w.Register("fileQueue", q, func(_ context.Context, _ *queue.Job) error {
		return errors.New("временная ошибка")
	})

	w.Start(context.Background())
	defer w.Stop()

	q.Enqueue(context.Background(), queue.Job{ID: "j1"})

	waitFor(t, func() bool { return len(q.nackedIDs()) >= 1 })

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.retry["j1"] {
		t.Error("обычная ошибка должна давать retryable Nack")
	}
}

func TestWorker_NackFatal(t *testing.T) {
	q := newFakeChanQueue()

	w := New(testLogger())
	w.Register("fileQueue", q, func(_ context.Context, _ *queue.Job) error {
		return queue.Fatal(errors.New("Missing fileId"))
	})

	w.Start(context.Background())
	defer w.Stop()

	q.Enqueue(context.Background(), queue.Job{ID: "j1"})

	waitFor(t, func() bool { return len(q.nackedIDs()) == 1 })

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.retry["j1"] {
		t.Error("fatal-ошибка не должна давать retryable Nack")
	}
}

func TestWorker_MultipleQueues(t *testing.T) {
	fileQ := newFakeChanQueue()
	userQ := newFakeChanQueue()

	w := New(testLogger())
	w.Register("fileQueue", fileQ, func(_ context.Context, _ *queue.Job) error { return nil })
	w.Register("userQueue", userQ, func(_ context.Context, _ *queue.Job) error { return nil })

	w.Start(context.Background())
	defer w.Stop()

	fileQ.Enqueue(context.Background(), queue.Job{ID: "f"})
	userQ.Enqueue(context.Background(), queue.Job{ID: "u"})

	waitFor(t, func() bool {
		return len(fileQ.ackedIDs()) == 1 && len(userQ.ackedIDs()) == 1
	})
}

func TestWorker_StopWaits(t *testing.T) {
	q := newFakeChanQueue()

	started := make(chan struct{})
	release := make(chan struct{})

	w := New(testLogger())
	w.Register("fileQueue", q, func(_ context.Context, _ *queue.Job) error {
		close(started)
		<-release
		return nil
	})

	w.Start(context.Background())
	q.Enqueue(context.Background(), queue.Job{ID: "j1"})
	<-started

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop завершился до окончания текущей задачи")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не завершился")
	}

	// Начатая задача дообработана и подтверждена
	if len(q.ackedIDs()) != 1 {
		t.Errorf("подтверждено %d задач, ожидалась 1", len(q.ackedIDs()))
	}
}
