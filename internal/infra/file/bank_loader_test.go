package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestBankLoaderReadsQuestionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	content := `[
		{"id": "q1", "question": "2+2?", "options": ["3", "4"], "answer_index": 1, "explanation": "arithmetic"},
		{"id": "q2", "question": "Red planet?", "options": ["Mars", "Venus"], "answer_index": 0}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	questions, err := NewBankLoader(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	q := questions[0]
	if q.ID != "q1" || q.Prompt != "2+2?" || q.CorrectIndex != 1 || q.Explanation != "arithmetic" {
		t.Fatalf("unexpected question %+v", q)
	}
	if len(q.Options) != 2 || q.Options[1] != "4" {
		t.Fatalf("unexpected options %v", q.Options)
	}
}

func TestBankLoaderMissingFile(t *testing.T) {
	if _, err := NewBankLoader("/does/not/exist.json").LoadQuestions(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestBankLoaderMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(`{not json]`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewBankLoader(path).LoadQuestions(context.Background()); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}
