package domain

import "time"

// Question is a bank record. JSON tags follow the question-file schema
// (data/questions.json).
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"answer_index"`
	Explanation  string   `json:"explanation,omitempty"`
}

// SessionQuestion is a Question bound into a session: same prompt, a
// permuted copy of the options, and the correct index remapped to the
// permuted order. Immutable once built.
type SessionQuestion struct {
	QuestionID   string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// QuestionView is what the presentation layer gets to see: never the
// answer key.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Answer records the outcome of a single submitted answer.
type Answer struct {
	QuestionID   string        `json:"questionId"`
	Prompt       string        `json:"prompt"`
	ChosenIndex  int           `json:"chosenIndex"`
	CorrectIndex int           `json:"correctIndex"`
	Correct      bool          `json:"correct"`
	Explanation  string        `json:"explanation,omitempty"`
	Elapsed      time.Duration `json:"elapsedNs"`
}

// AnswerResult summarizes one submission for the caller.
type AnswerResult struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation,omitempty"`
	Score        int    `json:"score"`
	Answered     int    `json:"answered"`
	Total        int    `json:"total"`
	Done         bool   `json:"done"`
}

// SessionStatus is the session state machine: a single forward
// transition from in-progress to completed.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
)

// LeaderboardEntry is one durable record of a completed session.
type LeaderboardEntry struct {
	ID          int64     `json:"id"`
	PlayerLabel string    `json:"name"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percent     float64   `json:"percent"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// RankBefore reports whether a ranks ahead of b: higher percent first,
// ties broken by earlier submission, then by insertion order.
func RankBefore(a, b LeaderboardEntry) bool {
	if a.Percent != b.Percent {
		return a.Percent > b.Percent
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}

// Percent converts a score/total pair to the 0-100 scale stored on the
// leaderboard.
func Percent(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Grade is the performance tier shown on the result screen.
type Grade struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Result is the final state of a completed session.
type Result struct {
	PlayerLabel string           `json:"name"`
	Score       int              `json:"score"`
	Total       int              `json:"total"`
	Percent     float64          `json:"percent"`
	Grade       Grade            `json:"grade"`
	Review      []Answer         `json:"review"`
	Entry       LeaderboardEntry `json:"entry"`
}
