// Package audio plays synthesized items one at a time.
package audio

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("audio: queue closed")

// Item is one finished piece of audio waiting for its turn.
type Item struct {
	ID    uuid.UUID
	Label string
	WAV   []byte
}

// Sink consumes items. Play blocks until the item is finished.
type Sink interface {
	Play(ctx context.Context, item Item) error
}

// Queue hands items to a sink strictly in arrival order. A failing item is
// logged and the queue moves on.
type Queue struct {
	sink   Sink
	log    *slog.Logger
	onDone func(Item, error)

	mu     sync.Mutex
	items  []Item
	closed bool
	wake   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type QueueOption func(*Queue)

func WithQueueLogger(log *slog.Logger) QueueOption {
	return func(q *Queue) { q.log = log }
}

// WithOnDone registers a callback run after every item, with the sink's error.
func WithOnDone(fn func(Item, error)) QueueOption {
	return func(q *Queue) { q.onDone = fn }
}

func NewQueue(sink Sink, opts ...QueueOption) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		sink:   sink,
		log:    slog.Default(),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

func (q *Queue) Add(item Item) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Len is the number of items not yet started.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting items, plays what is already queued and waits.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

// Stop abandons the current and pending items and waits for the worker.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
	q.cancel()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	defer q.cancel()
	for {
		item, ok, finished := q.next()
		if finished {
			return
		}
		if !ok {
			select {
			case <-q.wake:
			case <-q.ctx.Done():
				return
			}
			continue
		}
		err := q.sink.Play(q.ctx, item)
		if err != nil {
			q.log.Error("audio: playback failed", "id", item.ID, "label", item.Label, "err", err)
		}
		if q.onDone != nil {
			q.onDone(item, err)
		}
	}
}

func (q *Queue) next() (item Item, ok, finished bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Item{}, false, q.closed
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true, false
}
