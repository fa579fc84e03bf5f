package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const defaultCapacity = 100

// Memory is a process-local LRU cache with expiry. Every Get hit and every
// Set moves the entry to the most-recently-used position.
type Memory struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	now        func() time.Time
	order      *list.List
	entries    map[string]*list.Element
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemory constructs a Memory cache. A nil clock uses time.Now.
func NewMemory(capacity int, defaultTTL time.Duration, now func() time.Time) *Memory {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		now:        now,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if m.now().After(e.expiresAt) {
		m.removeElement(el)
		return nil, false
	}
	m.order.MoveToFront(el)
	return e.value, true
}

// Set inserts or overwrites key. A ttl <= 0 uses the cache default.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if m == nil {
		return
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt := m.now().Add(ttl)
	if el, ok := m.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		m.order.MoveToFront(el)
		return
	}
	if m.order.Len() >= m.capacity {
		if oldest := m.order.Back(); oldest != nil {
			m.removeElement(oldest)
		}
	}
	m.entries[key] = m.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
}

// Purge drops every entry.
func (m *Memory) Purge(ctx context.Context) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.entries = make(map[string]*list.Element)
}

// Len reports the number of entries, including ones that expired but were not yet read.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) removeElement(el *list.Element) {
	m.order.Remove(el)
	delete(m.entries, el.Value.(*entry).key)
}

var _ Store = (*Memory)(nil)
