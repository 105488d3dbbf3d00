package app

import (
	"fmt"
	"math/rand"

	"arcquiz-service/internal/domain"
)

// Bank is the process-wide pool of questions: validated once at
// startup, read-only afterwards.
type Bank struct {
	questions []domain.Question
}

// NewBank validates the loaded records and builds the bank. Any
// malformed record fails the whole load; the error wraps
// domain.ErrBadBank.
func NewBank(questions []domain.Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", domain.ErrBadBank)
	}

	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question with empty id", domain.ErrBadBank)
		}
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate question id %q", domain.ErrBadBank, q.ID)
		}
		seen[q.ID] = struct{}{}

		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %q has %d options, need at least 2", domain.ErrBadBank, q.ID, len(q.Options))
		}
		texts := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, ok := texts[opt]; ok {
				return nil, fmt.Errorf("%w: question %q has duplicate option %q", domain.ErrBadBank, q.ID, opt)
			}
			texts[opt] = struct{}{}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %q has correct index %d out of range", domain.ErrBadBank, q.ID, q.CorrectIndex)
		}
	}

	copied := make([]domain.Question, len(questions))
	copy(copied, questions)
	return &Bank{questions: copied}, nil
}

// Len reports the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// SampleDistinct draws n questions without repetition: a uniform random
// permutation of the bank truncated to the first n, so both the chosen
// subset and its ordering are uniform.
func (b *Bank) SampleDistinct(rnd *rand.Rand, n int) ([]domain.Question, error) {
	if n > len(b.questions) {
		return nil, fmt.Errorf("%w: requested %d of %d", domain.ErrInsufficientQuestions, n, len(b.questions))
	}
	perm := rnd.Perm(len(b.questions))
	picked := make([]domain.Question, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, b.questions[idx])
	}
	return picked, nil
}
