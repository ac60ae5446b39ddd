package notify

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("notification queue full")
	ErrQueueClosed = errors.New("notification queue closed")
)

type Queue interface {
	Push(ctx context.Context, m Message) error
	// Pop blocks until a message is available, ctx is done or the queue is closed.
	Pop(ctx context.Context) (Message, error)
	Close() error
}

// MemoryQueue is a bounded in-process queue. Push never blocks: when the
// buffer is full the message is rejected with ErrQueueFull.
type MemoryQueue struct {
	ch     chan Message
	closed chan struct{}
	once   sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{ch: make(chan Message, size), closed: make(chan struct{})}
}

func (q *MemoryQueue) Push(_ context.Context, m Message) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Message, error) {
	select {
	case m := <-q.ch:
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-q.closed:
		return Message{}, ErrQueueClosed
	}
}

func (q *MemoryQueue) Len() int { return len(q.ch) }

func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
