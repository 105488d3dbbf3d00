package redis

import (
	"context"
	"sync"
	"time"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - The live Session object stays in a local map; Redis holds a
//     liveness key whose TTL is the idle timeout, refreshed on access.
//   - A session the local map knows but whose liveness key is gone was
//     idle past the timeout: reported as expired, never silently.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Create(ctx context.Context, session *app.Session) (string, error) {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	if err := r.client.Set(ctx, r.key(id), "1", r.ttl).Err(); err != nil {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return "", err
	}
	return id, nil
}

func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (*app.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	alive, err := r.client.Exists(ctx, r.key(sessionID)).Result()
	if err == nil && alive == 0 {
		r.mu.Lock()
		delete(r.sessions, sessionID)
		r.mu.Unlock()
		return nil, domain.ErrSessionExpired
	}
	// best-effort touch; a transient redis error must not kill the session
	_ = r.client.Expire(ctx, r.key(sessionID), r.ttl).Err()
	return session, nil
}

func (r *SessionRegistry) Remove(ctx context.Context, sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	_ = r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *SessionRegistry) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
