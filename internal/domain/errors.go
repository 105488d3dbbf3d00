package domain

import "errors"

var (
	// ErrBadBank is wrapped by question bank validation failures; the
	// process must not serve traffic with a bank that fails to load.
	ErrBadBank = errors.New("invalid question bank")
	// ErrInvalidCount is returned for a non-positive requested question
	// count or a negative leaderboard limit.
	ErrInvalidCount = errors.New("invalid count")
	// ErrInsufficientQuestions is returned when the bank cannot supply
	// the requested number of distinct questions.
	ErrInsufficientQuestions = errors.New("not enough questions in bank")
	// ErrInvalidAnswer is returned when a chosen option index is out of
	// bounds for the current question.
	ErrInvalidAnswer = errors.New("invalid answer choice")
	// ErrSessionCompleted is returned when acting on an already
	// completed session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrSessionNotCompleted is returned when reading a final score
	// from a session that is still in progress.
	ErrSessionNotCompleted = errors.New("session not completed")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session sat idle past the
	// registry timeout and was evicted.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidScore is returned for a leaderboard record outside
	// 0 <= score <= total.
	ErrInvalidScore = errors.New("invalid score")
)

// ValidateScore checks a score/total pair before it reaches a
// leaderboard store.
func ValidateScore(score, total int) error {
	if total < 1 || score < 0 || score > total {
		return ErrInvalidScore
	}
	return nil
}
