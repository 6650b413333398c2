package services

import (
	"context"
	"sync"
)

// Notifier is told which tables a committed write touched.
type Notifier interface {
	Notify(ctx context.Context, tables ...string)
}

// Hub fans table-change notifications out to live query subscriptions in this process.
// Notifications are coalesced: a subscriber that has not drained its channel sees one
// pending wake-up no matter how many writes happened in between.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

type Subscription struct {
	hub    *Hub
	tables map[string]struct{}
	ch     chan struct{}
	closed bool
}

func (h *Hub) Subscribe(tables ...string) *Subscription {
	sub := &Subscription{
		hub:    h,
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, table := range tables {
		sub.tables[table] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// C is closed when the subscription is closed.
func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(s.hub.subs, s)
	close(s.ch)
}

func (h *Hub) Notify(_ context.Context, tables ...string) {
	h.Broadcast(tables...)
}

func (h *Hub) Broadcast(tables ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.watches(tables) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *Subscription) watches(tables []string) bool {
	for _, table := range tables {
		if _, ok := s.tables[table]; ok {
			return true
		}
	}
	return false
}
