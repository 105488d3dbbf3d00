package memory

import (
	"context"

	"arcquiz-service/internal/domain"
)

// StaticBankLoader serves a fixed question list (useful for tests/demos).
type StaticBankLoader struct {
	questions []domain.Question
}

func NewStaticBankLoader(questions []domain.Question) *StaticBankLoader {
	return &StaticBankLoader{questions: questions}
}

func (l *StaticBankLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	copied := make([]domain.Question, len(l.questions))
	copy(copied, l.questions)
	return copied, nil
}
