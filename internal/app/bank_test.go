package app_test

import (
	"errors"
	"math/rand"
	"testing"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
)

func TestNewBankRejectsBadInput(t *testing.T) {
	cases := []struct {
		name      string
		questions []domain.Question
	}{
		{"empty bank", nil},
		{"duplicate id", []domain.Question{
			{ID: "q1", Prompt: "a?", Options: []string{"x", "y"}, CorrectIndex: 0},
			{ID: "q1", Prompt: "b?", Options: []string{"x", "y"}, CorrectIndex: 0},
		}},
		{"too few options", []domain.Question{
			{ID: "q1", Prompt: "a?", Options: []string{"x"}, CorrectIndex: 0},
		}},
		{"duplicate option text", []domain.Question{
			{ID: "q1", Prompt: "a?", Options: []string{"x", "x"}, CorrectIndex: 0},
		}},
		{"correct index out of range", []domain.Question{
			{ID: "q1", Prompt: "a?", Options: []string{"x", "y"}, CorrectIndex: 2},
		}},
		{"negative correct index", []domain.Question{
			{ID: "q1", Prompt: "a?", Options: []string{"x", "y"}, CorrectIndex: -1},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := app.NewBank(tc.questions); !errors.Is(err, domain.ErrBadBank) {
				t.Fatalf("expected ErrBadBank, got %v", err)
			}
		})
	}
}

func TestSampleDistinct(t *testing.T) {
	bank := fiveQuestionBank(t)
	rnd := rand.New(rand.NewSource(1))

	picked, err := bank.SampleDistinct(rnd, 3)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(picked) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(picked))
	}
	seen := map[string]bool{}
	for _, q := range picked {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in sample", q.ID)
		}
		seen[q.ID] = true
		switch q.ID {
		case "A", "B", "C", "D", "E":
		default:
			t.Fatalf("question %s not from the bank", q.ID)
		}
	}
}

func TestSampleDistinctCoversWholeBank(t *testing.T) {
	bank := fiveQuestionBank(t)
	rnd := rand.New(rand.NewSource(2))

	picked, err := bank.SampleDistinct(rnd, bank.Len())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	seen := map[string]bool{}
	for _, q := range picked {
		seen[q.ID] = true
	}
	if len(seen) != bank.Len() {
		t.Fatalf("expected all %d ids, got %d", bank.Len(), len(seen))
	}
}

func TestSampleDistinctTooMany(t *testing.T) {
	bank := fiveQuestionBank(t)
	rnd := rand.New(rand.NewSource(3))

	if _, err := bank.SampleDistinct(rnd, 10); !errors.Is(err, domain.ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}
}

func fiveQuestionBank(t *testing.T) *app.Bank {
	t.Helper()
	ids := []string{"A", "B", "C", "D", "E"}
	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		questions = append(questions, domain.Question{
			ID:           id,
			Prompt:       "Question " + id,
			Options:      []string{"right " + id, "wrong " + id, "also wrong " + id},
			CorrectIndex: 0,
		})
	}
	bank, err := app.NewBank(questions)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	return bank
}
