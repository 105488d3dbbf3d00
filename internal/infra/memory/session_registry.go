package memory

import (
	"context"
	"sync"
	"time"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
	"github.com/google/uuid"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
// Each entry carries an idle deadline refreshed on access; idle entries
// are reported as expired on the next access, then swept for good.
type SessionRegistry struct {
	idleTimeout time.Duration
	clock       func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
	expired map[string]time.Time
	done    chan struct{}
	once    sync.Once
}

type registryEntry struct {
	session  *app.Session
	deadline time.Time
}

func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	r := newSessionRegistryWithClock(idleTimeout, time.Now)
	go r.janitor()
	return r
}

// NewSessionRegistryWithClock is test-only: no janitor goroutine, the
// caller drives expiry via the injected clock and Sweep.
func NewSessionRegistryWithClock(idleTimeout time.Duration, clock func() time.Time) *SessionRegistry {
	return newSessionRegistryWithClock(idleTimeout, clock)
}

func newSessionRegistryWithClock(idleTimeout time.Duration, clock func() time.Time) *SessionRegistry {
	return &SessionRegistry{
		idleTimeout: idleTimeout,
		clock:       clock,
		entries:     make(map[string]*registryEntry),
		expired:     make(map[string]time.Time),
		done:        make(chan struct{}),
	}
}

func (r *SessionRegistry) Create(_ context.Context, session *app.Session) (string, error) {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries[id] = &registryEntry{
		session:  session,
		deadline: r.clock().Add(r.idleTimeout),
	}
	r.mu.Unlock()
	return id, nil
}

func (r *SessionRegistry) Get(_ context.Context, sessionID string) (*app.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	entry, ok := r.entries[sessionID]
	if !ok {
		if _, was := r.expired[sessionID]; was {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrSessionNotFound
	}
	if now.After(entry.deadline) {
		delete(r.entries, sessionID)
		r.expired[sessionID] = now
		return nil, domain.ErrSessionExpired
	}
	entry.deadline = now.Add(r.idleTimeout)
	return entry.session, nil
}

func (r *SessionRegistry) Remove(_ context.Context, sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	delete(r.expired, sessionID)
	r.mu.Unlock()
}

// Sweep evicts idle sessions and drops expiry markers older than the
// idle timeout.
func (r *SessionRegistry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	for id, entry := range r.entries {
		if now.After(entry.deadline) {
			delete(r.entries, id)
			r.expired[id] = now
		}
	}
	for id, at := range r.expired {
		if now.Sub(at) > r.idleTimeout {
			delete(r.expired, id)
		}
	}
}

// Close stops the janitor goroutine.
func (r *SessionRegistry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *SessionRegistry) janitor() {
	interval := r.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.done:
			return
		}
	}
}
