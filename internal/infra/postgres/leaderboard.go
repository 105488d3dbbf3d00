package postgres

import (
	"context"
	"fmt"
	"time"

	"arcquiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// LeaderboardStore persists highscores in Postgres via bun. The insert
// commits before Record returns, which is the durability boundary the
// engine promises its callers.
type LeaderboardStore struct {
	db    *bun.DB
	clock func() time.Time
}

type highscore struct {
	bun.BaseModel `bun:"table:highscores"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Score     int       `bun:"score,notnull"`
	Total     int       `bun:"total,notnull"`
	Percent   float64   `bun:"percent,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func NewLeaderboardStore(db *bun.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db, clock: time.Now}
}

func (s *LeaderboardStore) Record(ctx context.Context, playerLabel string, score, total int) (domain.LeaderboardEntry, error) {
	if err := domain.ValidateScore(score, total); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	row := &highscore{
		Name:      playerLabel,
		Score:     score,
		Total:     total,
		Percent:   domain.Percent(score, total),
		CreatedAt: s.clock().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("record highscore: %w", err)
	}
	return entryFromRow(row), nil
}

func (s *LeaderboardStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n < 0 {
		return nil, domain.ErrInvalidCount
	}

	var rows []highscore
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("percent DESC, created_at ASC, id ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, entryFromRow(&rows[i]))
	}
	return entries, nil
}

func entryFromRow(row *highscore) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		ID:          row.ID,
		PlayerLabel: row.Name,
		Score:       row.Score,
		Total:       row.Total,
		Percent:     row.Percent,
		SubmittedAt: row.CreatedAt,
	}
}
