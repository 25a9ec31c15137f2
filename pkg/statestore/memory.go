package statestore

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

var _ oauth.StateStore = (*Memory)(nil)

type entry struct {
	expiresAt time.Time
	state     string
}

// Memory keeps issued states in process memory.
//
// Entries expire after their TTL. When a maximum size is configured the oldest
// state is dropped to make room, so a burst of abandoned logins cannot grow
// the store without bound. States live in one process only; use Redis when
// login and callback may reach different instances.
type Memory struct {
	items map[string]*list.Element
	order *list.List
	opts  *memoryOptions
	now   func() time.Time
	done  chan struct{}
	mu    sync.Mutex

	closed bool
}

// NewMemory creates an in-memory store and starts its janitor goroutine.
// Call Close to stop it.
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		items: make(map[string]*list.Element),
		order: list.New(),
		opts:  o,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

// Save records state until ttl elapses. A non-positive ttl uses the default TTL.
func (m *Memory) Save(_ context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return ErrEmptyState
	}
	if ttl <= 0 {
		ttl = m.opts.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	expiresAt := m.now().Add(ttl)
	if elem, ok := m.items[state]; ok {
		elem.Value.(*entry).expiresAt = expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[state] = m.order.PushFront(&entry{state: state, expiresAt: expiresAt})
	return nil
}

// Consume removes state. It returns ErrNotFound if the state is unknown or expired.
func (m *Memory) Consume(_ context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	elem, ok := m.items[state]
	if !ok {
		return ErrNotFound
	}
	m.remove(elem)
	if m.now().After(elem.Value.(*entry).expiresAt) {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of stored states, including expired ones not yet collected.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Ping reports whether the store is usable.
func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close stops the janitor. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			m.remove(elem)
		}
		elem = prev
	}
}

// remove deletes elem. Caller must hold the mutex.
func (m *Memory) remove(elem *list.Element) {
	m.order.Remove(elem)
	delete(m.items, elem.Value.(*entry).state)
}
