package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"arcquiz-service/internal/domain"
)

// SessionRegistry maps opaque session ids to in-progress sessions
// (in-memory, Redis, etc). Get refreshes the idle deadline.
type SessionRegistry interface {
	Create(ctx context.Context, session *Session) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Remove(ctx context.Context, sessionID string)
}

// LeaderboardStore persists completed-session results. Record must
// flush before returning; TopN returns entries in rank order.
type LeaderboardStore interface {
	Record(ctx context.Context, playerLabel string, score, total int) (domain.LeaderboardEntry, error)
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// BankLoader supplies raw question records from a backing source
// (JSON file, Postgres, static map).
type BankLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuizService contains the quiz use cases: starting a session,
// stepping through it, and recording the result.
type QuizService struct {
	bank     *Bank
	sessions SessionRegistry
	board    LeaderboardStore

	mu  sync.Mutex // guards rnd; rand.Rand is not goroutine safe
	rnd *rand.Rand
	now func() time.Time
}

func NewQuizService(bank *Bank, sessions SessionRegistry, board LeaderboardStore) *QuizService {
	return NewQuizServiceWithRand(bank, sessions, board, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithRand injects the random source so tests can pin the
// sampling and shuffle outcomes.
func NewQuizServiceWithRand(bank *Bank, sessions SessionRegistry, board LeaderboardStore, rnd *rand.Rand) *QuizService {
	return &QuizService{
		bank:     bank,
		sessions: sessions,
		board:    board,
		rnd:      rnd,
		now:      time.Now,
	}
}

// BankSize reports how many questions are available, for the transport
// layer to surface and clamp defaults against.
func (s *QuizService) BankSize() int {
	return s.bank.Len()
}

// Start builds a new session: count distinct questions sampled from the
// bank, each with independently shuffled options, registered under a
// fresh opaque id. Returns the id and the first question view.
func (s *QuizService) Start(ctx context.Context, playerLabel string, count int) (string, domain.QuestionView, error) {
	if count < 1 {
		return "", domain.QuestionView{}, domain.ErrInvalidCount
	}

	s.mu.Lock()
	picked, err := s.bank.SampleDistinct(s.rnd, count)
	if err != nil {
		s.mu.Unlock()
		return "", domain.QuestionView{}, err
	}
	bound := make([]domain.SessionQuestion, 0, len(picked))
	for _, q := range picked {
		bound = append(bound, shuffleOptions(s.rnd, q))
	}
	s.mu.Unlock()

	session := newSessionWithClock(playerLabel, bound, s.now)
	id, err := s.sessions.Create(ctx, session)
	if err != nil {
		return "", domain.QuestionView{}, err
	}
	view, err := session.CurrentQuestion()
	if err != nil {
		return "", domain.QuestionView{}, err
	}
	return id, view, nil
}

// Question returns the current question view for an in-progress session.
func (s *QuizService) Question(ctx context.Context, sessionID string) (domain.QuestionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	return session.CurrentQuestion()
}

// Submit grades one answer for the session's current question.
func (s *QuizService) Submit(ctx context.Context, sessionID string, chosenIndex int) (domain.AnswerResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return session.SubmitAnswer(chosenIndex)
}

// Finish records a completed session on the leaderboard and removes it
// from the registry. Removal makes a second submission impossible: the
// next Finish for the same id gets ErrSessionNotFound. The session is
// only removed after the write succeeds, so a failed Record can be
// retried.
func (s *QuizService) Finish(ctx context.Context, sessionID string) (domain.Result, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	if err := session.ClaimSubmission(); err != nil {
		return domain.Result{}, err
	}
	score, total, err := session.FinalScore()
	if err != nil {
		return domain.Result{}, err
	}
	review, err := session.Review()
	if err != nil {
		return domain.Result{}, err
	}

	entry, err := s.board.Record(ctx, session.PlayerLabel(), score, total)
	if err != nil {
		session.ReleaseSubmission()
		return domain.Result{}, err
	}
	s.sessions.Remove(ctx, sessionID)

	percent := domain.Percent(score, total)
	return domain.Result{
		PlayerLabel: session.PlayerLabel(),
		Score:       score,
		Total:       total,
		Percent:     percent,
		Grade:       GradeFor(score, total),
		Review:      review,
		Entry:       entry,
	}, nil
}

// Leaderboard returns the ranked top n entries.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	return s.board.TopN(ctx, n)
}

// shuffleOptions permutes a question's options uniformly and remaps the
// correct index to its new position.
func shuffleOptions(rnd *rand.Rand, q domain.Question) domain.SessionQuestion {
	perm := rnd.Perm(len(q.Options))
	opts := make([]string, len(q.Options))
	correct := 0
	for newIdx, oldIdx := range perm {
		opts[newIdx] = q.Options[oldIdx]
		if oldIdx == q.CorrectIndex {
			correct = newIdx
		}
	}
	return domain.SessionQuestion{
		QuestionID:   q.ID,
		Prompt:       q.Prompt,
		Options:      opts,
		CorrectIndex: correct,
		Explanation:  q.Explanation,
	}
}
