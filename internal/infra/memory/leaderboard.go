package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"arcquiz-service/internal/domain"
)

// LeaderboardStore is an in-memory implementation of
// app.LeaderboardStore, useful for tests and redis/postgres-less runs.
type LeaderboardStore struct {
	clock func() time.Time

	mu      sync.Mutex
	nextID  int64
	entries []domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return NewLeaderboardStoreWithClock(time.Now)
}

// NewLeaderboardStoreWithClock is test-only for deterministic
// submission timestamps.
func NewLeaderboardStoreWithClock(clock func() time.Time) *LeaderboardStore {
	return &LeaderboardStore{clock: clock, nextID: 1}
}

func (s *LeaderboardStore) Record(_ context.Context, playerLabel string, score, total int) (domain.LeaderboardEntry, error) {
	if err := domain.ValidateScore(score, total); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := domain.LeaderboardEntry{
		ID:          s.nextID,
		PlayerLabel: playerLabel,
		Score:       score,
		Total:       total,
		Percent:     domain.Percent(score, total),
		SubmittedAt: s.clock(),
	}
	s.nextID++
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *LeaderboardStore) TopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n < 0 {
		return nil, domain.ErrInvalidCount
	}

	s.mu.Lock()
	ranked := make([]domain.LeaderboardEntry, len(s.entries))
	copy(ranked, s.entries)
	s.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return domain.RankBefore(ranked[i], ranked[j])
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
