package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/types"
)

// TradeSink receives the trades of one ProcessOrder call, in execution
// order. Publish is invoked from the serialized submission path, so the
// order of Publish calls is the global trade order.
type TradeSink interface {
	Publish(trades []*types.Trade)
}

// Subscription is one observer's ordered trade feed.
type Subscription struct {
	ch  chan *types.Trade
	hub *Hub
}

// C is the receive side of the feed. It is closed when the subscriber is
// evicted or unsubscribes.
func (s *Subscription) C() <-chan *types.Trade {
	return s.ch
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub fans trades out to subscribers over bounded per-subscriber queues.
// Every subscriber sees trades in exactly the order they were produced: a
// subscriber that cannot keep up is evicted rather than skipped, because a
// gap in the middle of the sequence would be indistinguishable from a
// reordering.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	log    zerolog.Logger
}

func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe attaches a new observer. Trades published after this call will
// be delivered; there is no replay of earlier trades.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan *types.Trade, h.buffer), hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers the trades to every subscriber in order. Subscribers
// whose queue is full are evicted mid-batch so the remaining delivery stays
// gap-free for everyone else.
func (h *Hub) Publish(trades []*types.Trade) {
	if len(trades) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for sub := range h.subs {
		evicted := false
		for _, tr := range trades {
			select {
			case sub.ch <- tr:
			default:
				evicted = true
			}
			if evicted {
				break
			}
		}
		if evicted {
			delete(h.subs, sub)
			close(sub.ch)
			h.log.Warn().Int("buffer", h.buffer).Msg("evicted slow trade subscriber")
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close evicts every subscriber and rejects future publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
}
