// pattern: Imperative Shell

package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Event types sent on the /api/events stream.
const (
	EventDetectProgress = "detect-progress"
	EventCatalogUpdated = "catalog-updated"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
// before new events are dropped for it.
const subscriberBuffer = 32

// Event is one JSON message on the /api/events stream.
type Event struct {
	Type    string `json:"type"`
	Percent *int   `json:"percent,omitempty"`
}

func progressEvent(percent int) Event {
	return Event{Type: EventDetectProgress, Percent: &percent}
}

// eventBroker fans events out to websocket subscribers. Delivery is best
// effort: a subscriber whose buffer is full misses the event.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	onCount     func(delta int)
}

func newEventBroker(onCount func(delta int)) *eventBroker {
	if onCount == nil {
		onCount = func(int) {}
	}
	return &eventBroker{
		subscribers: make(map[chan Event]struct{}),
		onCount:     onCount,
	}
}

// Subscribe returns a buffered channel that receives every published event.
// The caller must call Unsubscribe when done.
func (b *eventBroker) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	b.onCount(1)
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *eventBroker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	_, ok := b.subscribers[ch]
	delete(b.subscribers, ch)
	b.mu.Unlock()
	if ok {
		b.onCount(-1)
	}
}

// Publish sends ev to every subscriber without blocking.
func (b *eventBroker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// handleEvents upgrades to a websocket and streams broker events as JSON
// until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Restrict to localhost origins to prevent cross-origin WebSocket attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// Do not use r.Context() after the upgrade; CloseRead drains client
	// frames and cancels ctx when the peer closes.
	ctx := conn.CloseRead(context.Background())

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				s.logger.Debug("event stream closed", "error", err)
				return
			}
		}
	}
}
