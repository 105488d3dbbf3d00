package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"arcquiz-service/internal/domain"
)

// BankLoader reads the question bank from a JSON file shaped like
// data/questions.json: an array of {id, question, options, answer_index,
// explanation} records. Schema validation happens in app.NewBank.
type BankLoader struct {
	path string
}

func NewBankLoader(path string) *BankLoader {
	return &BankLoader{path: path}
}

func (l *BankLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", l.path, err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrBadBank, l.path, err)
	}
	return questions, nil
}
