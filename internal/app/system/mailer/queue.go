// internal/app/system/mailer/queue.go
package mailer

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Sender is implemented by Mailer; tests substitute a fake.
type Sender interface {
	Send(Email) error
}

// ErrQueueFull is returned by Enqueue when the buffer is at capacity.
// Callers treat a full queue as a server error; mail is never silently
// dropped.
var ErrQueueFull = errors.New("mail queue is full")

// ErrQueueClosed is returned by Enqueue after Stop.
var ErrQueueClosed = errors.New("mail queue is stopped")

// Queue decouples request handlers from SMTP latency: handlers enqueue
// and return, a fixed pool of workers drains the buffer. Lifecycle is
// explicit — the queue is constructed and injected, never package
// state.
type Queue struct {
	sender  Sender
	log     *zap.Logger
	ch      chan Email
	workers int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue with the given buffer size and worker count.
func NewQueue(sender Sender, buffer, workers int, logger *zap.Logger) *Queue {
	if buffer < 1 {
		buffer = 64
	}
	if workers < 1 {
		workers = 2
	}
	return &Queue{
		sender:  sender,
		log:     logger,
		ch:      make(chan Email, buffer),
		workers: workers,
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.log.Info("mail queue started",
		zap.Int("workers", q.workers),
		zap.Int("buffer", cap(q.ch)))
}

// Stop closes the queue and waits for workers to drain what was
// already enqueued.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
	q.log.Info("mail queue stopped")
}

// Enqueue adds an email to the buffer without blocking.
func (q *Queue) Enqueue(e Email) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for e := range q.ch {
		if err := q.sender.Send(e); err != nil {
			// Delivery failures are logged, not retried: OTP codes
			// expire quickly and callers can re-request.
			q.log.Error("email send failed",
				zap.String("to", e.To),
				zap.String("subject", e.Subject),
				zap.Error(err))
		}
	}
}
