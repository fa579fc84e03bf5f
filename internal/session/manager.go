package session

import (
	"context"
	"sync"
	"time"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/shared/telemetry"
)

// Deps are shared by every session a Manager creates.
type Deps struct {
	Jobs        jobs.JobsRepo
	Generator   Generator
	Resumes     ResumeSource
	DefaultTone generation.Tone
	IdleTTL     time.Duration
	Now         func() time.Time
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Manager owns one Session per actor, created on first use and dropped after
// IdleTTL without activity.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager(deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = 2 * time.Hour
	}
	if deps.Jobs == nil {
		deps.Jobs = jobs.NewMemoryRepo()
	}
	return &Manager{
		deps:     deps,
		sessions: make(map[string]*entry),
	}
}

// Get returns the actor's session, creating it if needed.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.deps.Now()
	if e, ok := m.sessions[userID]; ok {
		e.lastUsed = now
		return e.session
	}
	store := jobs.NewStore(userID, m.deps.Jobs, m.deps.Now)
	s := newSession(userID, store, m.deps.Generator, m.deps.Resumes, m.deps.DefaultTone)
	m.sessions[userID] = &entry{session: s, lastUsed: now}
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than IdleTTL and returns how many.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.deps.Now().Add(-m.deps.IdleTTL)
	removed := 0
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				telemetry.Info("session.swept", map[string]any{"removed": n, "remaining": m.Len()})
			}
		}
	}
}
