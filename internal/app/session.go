package app

import (
	"sync"
	"time"

	"arcquiz-service/internal/domain"
)

// Session is one player's run through a fixed sequence of questions.
// All mutation goes through the session mutex, so a registry can hand
// the same instance to concurrent requests safely.
type Session struct {
	playerLabel string
	createdAt   time.Time
	now         func() time.Time

	mu           sync.Mutex
	questions    []domain.SessionQuestion
	currentIndex int
	answers      []domain.Answer
	score        int
	status       domain.SessionStatus
	askedAt      time.Time
	submitted    bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(playerLabel string, questions []domain.SessionQuestion) *Session {
	return newSessionWithClock(playerLabel, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(playerLabel string, questions []domain.SessionQuestion, now func() time.Time) *Session {
	return newSessionWithClock(playerLabel, questions, now)
}

func newSessionWithClock(playerLabel string, questions []domain.SessionQuestion, now func() time.Time) *Session {
	created := now()
	return &Session{
		playerLabel: playerLabel,
		createdAt:   created,
		now:         now,
		questions:   questions,
		answers:     make([]domain.Answer, 0, len(questions)),
		status:      domain.StatusInProgress,
		askedAt:     created,
	}
}

// PlayerLabel returns the display name captured at start.
func (s *Session) PlayerLabel() string {
	return s.playerLabel
}

// CreatedAt returns when the session was built.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// CurrentQuestion returns the display view of the question awaiting an
// answer. The view carries no answer key.
func (s *Session) CurrentQuestion() (domain.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusCompleted {
		return domain.QuestionView{}, domain.ErrSessionCompleted
	}
	return s.viewLocked(), nil
}

func (s *Session) viewLocked() domain.QuestionView {
	q := s.questions[s.currentIndex]
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return domain.QuestionView{
		Index:   s.currentIndex,
		Total:   len(s.questions),
		Prompt:  q.Prompt,
		Options: opts,
	}
}

// SubmitAnswer grades the chosen option against the current question
// and advances the session. The transition either fully commits or, on
// a validation error, changes nothing.
func (s *Session) SubmitAnswer(chosenIndex int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusCompleted {
		return domain.AnswerResult{}, domain.ErrSessionCompleted
	}

	q := s.questions[s.currentIndex]
	if chosenIndex < 0 || chosenIndex >= len(q.Options) {
		return domain.AnswerResult{}, domain.ErrInvalidAnswer
	}

	now := s.now()
	correct := chosenIndex == q.CorrectIndex
	if correct {
		s.score++
	}
	s.answers = append(s.answers, domain.Answer{
		QuestionID:   q.QuestionID,
		Prompt:       q.Prompt,
		ChosenIndex:  chosenIndex,
		CorrectIndex: q.CorrectIndex,
		Correct:      correct,
		Explanation:  q.Explanation,
		Elapsed:      now.Sub(s.askedAt),
	})
	s.currentIndex++
	s.askedAt = now
	if s.currentIndex == len(s.questions) {
		s.status = domain.StatusCompleted
	}

	return domain.AnswerResult{
		Correct:      correct,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		Score:        s.score,
		Answered:     s.currentIndex,
		Total:        len(s.questions),
		Done:         s.status == domain.StatusCompleted,
	}, nil
}

// FinalScore returns the completed session's score and question count.
func (s *Session) FinalScore() (score, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusCompleted {
		return 0, 0, domain.ErrSessionNotCompleted
	}
	return s.score, len(s.questions), nil
}

// Review returns a copy of the per-question answer records for the
// result screen. Only available once the session is completed.
func (s *Session) Review() ([]domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusCompleted {
		return nil, domain.ErrSessionNotCompleted
	}
	review := make([]domain.Answer, len(s.answers))
	copy(review, s.answers)
	return review, nil
}

// ClaimSubmission marks the completed session as claimed for a
// leaderboard write. Exactly one caller wins, so a session cannot be
// recorded twice even under concurrent finishes; losers see the same
// error a finish after removal would.
func (s *Session) ClaimSubmission() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusCompleted {
		return domain.ErrSessionNotCompleted
	}
	if s.submitted {
		return domain.ErrSessionNotFound
	}
	s.submitted = true
	return nil
}

// ReleaseSubmission gives the claim back after a failed leaderboard
// write so the caller can retry.
func (s *Session) ReleaseSubmission() {
	s.mu.Lock()
	s.submitted = false
	s.mu.Unlock()
}

// Status reports the session state.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
