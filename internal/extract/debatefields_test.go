package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vidhan-archive/kramank/internal/memory"
)

func debateFieldsEngine(llm Completer, mem memory.Store) *DebateFieldExtractor {
	e := NewDebateFieldExtractor(llm, mem, testOptions(), discardLogger())
	e.sleep = func(time.Duration) {}
	return e
}

func TestDebateFields_MergesAcrossChunks(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"date":"१३ मार्च २०००","question_number":["४५"],"members":["श्री. अ"],"topics":[],"answers_by":[]}`,
		`{"date":"१४ मार्च २०००","question_number":["४६"],"members":["श्री. ब"],"topics":[],"answers_by":["श्री. क"]}`,
	}}
	e := debateFieldsEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if got.Date != "१३ मार्च २०००" {
		t.Errorf("Date = %q, want first extracted value", got.Date)
	}
	if len(got.QuestionNumbers) != 2 || got.QuestionNumbers[1] != "४६" {
		t.Errorf("QuestionNumbers = %v", got.QuestionNumbers)
	}
	if len(got.Members) != 2 {
		t.Errorf("Members = %v", got.Members)
	}
	if len(got.AnsweredBy) != 1 || got.AnsweredBy[0] != "श्री. क" {
		t.Errorf("AnsweredBy = %v", got.AnsweredBy)
	}
}

func TestDebateFields_NumericQuestionNumbersNormalized(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"date":null,"question_number":[45, "46"],"members":[],"topics":[],"answers_by":[]}`,
	}}
	e := debateFieldsEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), "एक ओळ")

	if len(got.QuestionNumbers) != 2 || got.QuestionNumbers[0] != "45" || got.QuestionNumbers[1] != "46" {
		t.Errorf("QuestionNumbers = %v", got.QuestionNumbers)
	}
}

func TestDebateFields_DuplicatesWithinSpanDropped(t *testing.T) {
	same := `{"date":null,"question_number":[],"members":["श्री. अ"],"topics":[],"answers_by":[]}`
	llm := &fakeLLM{responses: []string{same, same}}
	e := debateFieldsEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if len(got.Members) != 1 {
		t.Errorf("Members = %v, want 1 within a span", got.Members)
	}
}

func TestDebateFields_SpansIndependent(t *testing.T) {
	// The same member extracted in two spans appears in both results, and
	// the second span's first prompt carries no memory from the first.
	resp := `{"date":null,"question_number":[],"members":["श्री. अ"],"topics":[],"answers_by":[]}`
	llm := &fakeLLM{responses: []string{resp}}
	mem := memory.NewInMemory()
	e := debateFieldsEngine(llm, mem)

	first := e.Process(context.Background(), "पहिला विषय")
	second := e.Process(context.Background(), "दुसरा विषय")

	if len(first.Members) != 1 || len(second.Members) != 1 {
		t.Fatalf("members = %v / %v, want the entity in both spans", first.Members, second.Members)
	}
	secondPrompt := llm.prompts[len(llm.prompts)-1]
	if strings.Contains(secondPrompt, "श्री. अ") {
		t.Errorf("second span's prompt carries the first span's memory:\n%s", secondPrompt)
	}
}

func TestDebateFields_MissingRequiredKeyRejected(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"date":"१३ मार्च २०००","question_number":[],"members":[],"answers_by":[]}`,
	}}
	e := debateFieldsEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), "एक ओळ")

	if got.Date != "" {
		t.Errorf("Date = %q, want rejection of incomplete response", got.Date)
	}
}

func TestDebateFieldsClearMemory(t *testing.T) {
	mem := memory.NewInMemory()
	llm := &fakeLLM{responses: []string{
		`{"date":null,"question_number":["४५"],"members":["श्री. अ"],"topics":[],"answers_by":[]}`,
	}}
	e := debateFieldsEngine(llm, mem)

	e.Process(context.Background(), "एक ओळ")
	if err := e.ClearMemory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := mem.Get(context.Background(), debateFieldsMemoryKey); ok {
		t.Error("memory not cleared")
	}
}
