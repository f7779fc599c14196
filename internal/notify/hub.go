package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

const subscriberBuffer = 16

// Hub is the in-process fan-out used by the websocket feed. Subscribers
// join and leave independently of ingestion; a subscriber whose buffer is
// full drops the snapshot.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

// Subscriber receives snapshots for one session
type Subscriber struct {
	hub       *Hub
	sessionID string
	ch        chan *models.Snapshot

	once sync.Once
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers an observer for a session id. The session does not
// have to exist yet; observers may connect before the first ingest.
func (h *Hub) Subscribe(sessionID string) *Subscriber {
	sub := &Subscriber{
		hub:       h,
		sessionID: sessionID,
		ch:        make(chan *models.Snapshot, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[sessionID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.topics[sessionID] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Publish delivers the snapshot to all subscribers of its session.
// Non-blocking: full subscriber buffers drop the message.
func (h *Hub) Publish(ctx context.Context, snap *models.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[snap.SessionID] {
		select {
		case sub.ch <- snap:
		default:
			slog.Debug("dropping snapshot for slow subscriber", "session_id", snap.SessionID)
		}
	}
}

// Close shuts every subscriber channel for a session, typically on End
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.topics[sessionID] {
		sub.closeChan()
	}
	delete(h.topics, sessionID)
}

// C returns the receive channel; it is closed when the subscription ends
func (s *Subscriber) C() <-chan *models.Snapshot {
	return s.ch
}

// Unsubscribe removes the observer and closes its channel
func (s *Subscriber) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if subs, ok := s.hub.topics[s.sessionID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.topics, s.sessionID)
		}
	}
	s.closeChan()
}

func (s *Subscriber) closeChan() {
	s.once.Do(func() { close(s.ch) })
}
