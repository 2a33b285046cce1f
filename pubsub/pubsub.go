package pubsub

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var plog zerolog.Logger

func init() {
	plog = log.With().Str("component", "pubsub").Logger()
}

type SubscriptionID int64

// Pubsub fans every published message out to all subscribers. Publish
// never blocks; a subscriber whose buffer is full misses the message.
type Pubsub[T any] struct {
	nextID      SubscriptionID
	subscribers map[SubscriptionID]chan T
	buffer      int
	closed      bool
	mu          sync.RWMutex
}

// New creates a Pubsub whose subscriber channels hold up to buffer
// undelivered messages.
func New[T any](buffer int) *Pubsub[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &Pubsub[T]{
		subscribers: make(map[SubscriptionID]chan T),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber. After Close it returns an already
// closed channel.
func (ps *Pubsub[T]) Subscribe() (SubscriptionID, <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan T, ps.buffer)
	id := ps.nextID
	ps.nextID += 1

	if ps.closed {
		close(ch)
		return id, ch
	}

	ps.subscribers[id] = ch
	return id, ch
}

func (ps *Pubsub[T]) Unsubscribe(id SubscriptionID) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch, ok := ps.subscribers[id]
	if !ok {
		return
	}

	delete(ps.subscribers, id)
	close(ch)
}

// Publish offers msg to every subscriber and returns how many took it.
func (ps *Pubsub[T]) Publish(msg T) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	delivered := 0
	for id, ch := range ps.subscribers {
		select {
		case ch <- msg:
			delivered++
		default:
			plog.Warn().
				Int64("subscription_id", int64(id)).
				Interface("message", msg).
				Msg("Message dropped, channel full")
		}
	}

	return delivered
}

// Len returns the number of live subscriptions.
func (ps *Pubsub[T]) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.subscribers)
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel and later publishes reach nobody.
func (ps *Pubsub[T]) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return
	}
	ps.closed = true

	for id, ch := range ps.subscribers {
		delete(ps.subscribers, id)
		close(ch)
	}
}
