package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bugtracker/backend/app/metrics"
	"bugtracker/backend/app/models"

	"github.com/rs/zerolog"
)

// Recorder stores delivery outcomes.
type Recorder interface {
	Create(ctx context.Context, n *models.Notification) error
}

type Dispatcher struct {
	Queue    Queue
	Sink     Sink
	Recorder Recorder
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	Workers  int
	Timeout  time.Duration
	Now      func() time.Time

	retryDelay time.Duration
}

// Run consumes the queue with Workers goroutines until ctx is done or the
// queue is closed.
func (d *Dispatcher) Run(ctx context.Context) {
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	delay := d.retryDelay
	if delay <= 0 {
		delay = time.Second
	}
	for {
		m, err := d.Queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return
			}
			d.Logger.Warn().Err(err).Msg("notification queue pop failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		d.Deliver(ctx, m)
	}
}

// Deliver sends one message and records the outcome. A message already taken
// off the queue is delivered even if ctx is cancelled meanwhile.
func (d *Dispatcher) Deliver(ctx context.Context, m Message) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := d.send(sendCtx, m)
	rec := &models.Notification{MessageID: m.ID, Event: m.Event, BugID: m.BugID, Text: m.Text}
	if err != nil {
		d.Logger.Warn().Err(err).Str("notification", m.ID).Str("event", m.Event).Uint("bug", m.BugID).Msg("notification delivery failed")
		rec.Status = models.NotificationFailed
		rec.LastError = truncate(err.Error(), 512)
	} else {
		now := d.now()
		rec.Status = models.NotificationSent
		rec.SentAt = &now
	}
	d.Metrics.NotificationResult(rec.Status)

	if d.Recorder == nil {
		return
	}
	if err := d.Recorder.Create(sendCtx, rec); err != nil {
		d.Logger.Warn().Err(err).Str("notification", m.ID).Msg("record notification outcome")
	}
}

func (d *Dispatcher) send(ctx context.Context, m Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return d.Sink.Send(ctx, m)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
