package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedLeaderboard wraps a LeaderboardStore with a TTL read cache so
// hot leaderboard pages do not hit the backing store on every request.
// Concurrent cold reads for the same limit are collapsed.
type CachedLeaderboard struct {
	store app.LeaderboardStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedTop
}

type cachedTop struct {
	entries   []domain.LeaderboardEntry
	expiresAt time.Time
}

func NewCachedLeaderboard(store app.LeaderboardStore, ttl time.Duration) *CachedLeaderboard {
	return &CachedLeaderboard{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[int]cachedTop),
	}
}

// Record delegates to the backing store and drops the cache so the new
// entry shows up on the next read.
func (c *CachedLeaderboard) Record(ctx context.Context, playerLabel string, score, total int) (domain.LeaderboardEntry, error) {
	entry, err := c.store.Record(ctx, playerLabel, score, total)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	c.mu.Lock()
	c.cache = make(map[int]cachedTop)
	c.mu.Unlock()
	return entry, nil
}

func (c *CachedLeaderboard) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n < 0 {
		return nil, domain.ErrInvalidCount
	}
	now := c.clock()

	c.mu.RLock()
	if top, ok := c.cache[n]; ok && top.expiresAt.After(now) {
		c.mu.RUnlock()
		return top.entries, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.Itoa(n), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if top, ok := c.cache[n]; ok && top.expiresAt.After(now) {
			c.mu.RUnlock()
			return top.entries, nil
		}
		c.mu.RUnlock()

		entries, err := c.store.TopN(ctx, n)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[n] = cachedTop{
			entries:   entries,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (c *CachedLeaderboard) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
