package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Recorder appends transaction events to the event store from a
// single background worker, keeping store latency and store failures
// off the matching path. Store errors are retried with exponential
// backoff; an event that exhausts its retries is logged and dropped
// rather than wedging the queue.
//
// Flush lets a caller wait until everything recorded so far has been
// handed to the store, which the API uses before answering a submit.
type Recorder struct {
	store storage.EventStore
	queue chan item

	maxRetries int
	backoff    time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type item struct {
	event *types.Event
	flush chan struct{}
}

// Options tunes queue depth and retry behavior; zero values get defaults
type Options struct {
	QueueSize  int
	MaxRetries int
	Backoff    time.Duration
}

// New creates a recorder and starts its worker
func New(store storage.EventStore, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 50 * time.Millisecond
	}

	r := &Recorder{
		store:      store,
		queue:      make(chan item, opts.QueueSize),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues events for appending. It only blocks when the queue
// is full, which means the store has fallen far behind.
func (r *Recorder) Record(events ...*types.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range events {
		if r.closed {
			logger.L().Warnw("event dropped after recorder close",
				"type", event.Type, "order_id", event.OrderID)
			continue
		}
		r.queue <- item{event: event}
	}
}

// Flush blocks until every event recorded before the call has been
// handed to the store, or the context expires
func (r *Recorder) Flush(ctx context.Context) error {
	ack := make(chan struct{})

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil
	}
	select {
	case r.queue <- item{flush: ack}:
		r.mu.RUnlock()
	case <-ctx.Done():
		r.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events, drains the queue, and waits for the
// worker to finish
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for it := range r.queue {
		if it.flush != nil {
			close(it.flush)
			continue
		}
		r.append(it.event)
	}
}

func (r *Recorder) append(event *types.Event) {
	delay := r.backoff
	for attempt := 1; ; attempt++ {
		err := r.store.Append(event)
		if err == nil {
			return
		}
		if attempt >= r.maxRetries {
			logger.L().Errorw("event append failed, dropping",
				"type", event.Type, "order_id", event.OrderID,
				"trade_id", event.TradeID, "attempts", attempt, "error", err)
			return
		}
		logger.L().Warnw("event append failed, retrying",
			"type", event.Type, "order_id", event.OrderID,
			"attempt", attempt, "error", err)
		time.Sleep(delay)
		delay *= 2
	}
}
