package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// fakeLLM returns scripted responses in order, then repeats the last one.
type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ChunkSize = 30
	opts.RetryDelay = 0
	opts.PaceDelay = 0
	return opts
}

func memberEngine(llm Completer, mem memory.Store) *ListEngine[Member] {
	e := NewMemberExtractor(llm, mem, testOptions(), discardLogger())
	e.sleep = func(time.Duration) {}
	return e
}

// twoChunkText is sized so ChunkSize=30 yields exactly two chunks.
func twoChunkText() string {
	return strings.Repeat("अ", 25) + "\n" + strings.Repeat("ब", 25)
}

func TestProcess_AcceptsEntities(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`[{"name":"श्री. अ","role":"मंत्री","ministry":"गृह"}]`,
		`[]`,
	}}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if len(got) != 1 {
		t.Fatalf("expected 1 member, got %d", len(got))
	}
	if got[0].Name != "श्री. अ" || got[0].Role != "मंत्री" {
		t.Errorf("member = %+v", got[0])
	}
	if llm.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", llm.calls)
	}
}

func TestProcess_DeduplicatesAcrossChunks(t *testing.T) {
	// Both chunks re-emit the same entity; only one survives.
	same := `[{"name":"श्री. अ","role":"मंत्री","ministry":""}]`
	llm := &fakeLLM{responses: []string{same, same}}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if len(got) != 1 {
		t.Fatalf("expected 1 member after dedup, got %d", len(got))
	}
}

func TestProcess_SameNameDifferentRoleKept(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`[{"name":"श्री. अ","role":"मंत्री","ministry":""}]`,
		`[{"name":"श्री. अ","role":"अध्यक्ष","ministry":""}]`,
	}}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if len(got) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got))
	}
}

func TestProcess_FencedEmptyArray(t *testing.T) {
	llm := &fakeLLM{responses: []string{"```json\n[]\n```"}}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), "एक ओळ")

	if len(got) != 0 {
		t.Fatalf("expected 0 members, got %d", len(got))
	}
}

func TestProcess_MalformedItemsDroppedIndividually(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`[{"role":"मंत्री"},{"name":"श्री. अ","role":"","ministry":""}]`,
	}}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), "एक ओळ")

	if len(got) != 1 {
		t.Fatalf("expected 1 member (nameless dropped), got %d", len(got))
	}
	if got[0].Name != "श्री. अ" {
		t.Errorf("member = %+v", got[0])
	}
}

func TestProcess_UnparseableResponseYieldsNothing(t *testing.T) {
	llm := &fakeLLM{responses: []string{"मला समजले नाही"}}
	e := memberEngine(llm, memory.NewInMemory())

	if got := e.Process(context.Background(), "एक ओळ"); len(got) != 0 {
		t.Fatalf("expected 0 members, got %d", len(got))
	}
}

func TestProcess_WrappedArrayRecovered(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`The extracted members are: [{"name":"श्री. अ","role":"","ministry":""}] as requested.`,
	}}
	e := memberEngine(llm, memory.NewInMemory())

	if got := e.Process(context.Background(), "एक ओळ"); len(got) != 1 {
		t.Fatalf("expected 1 member via fallback parse, got %d", len(got))
	}
}

func TestProcess_FailedChunkSkippedLaterChunksRun(t *testing.T) {
	boom := errors.New("transport down")
	llm := &fakeLLM{
		responses: []string{`[{"name":"श्री. अ","role":"","ministry":""}]`},
		// Chunk 1 fails all 3 attempts; chunk 2 still runs and succeeds.
		errs: []error{boom, boom, boom},
	}
	e := memberEngine(llm, memory.NewInMemory())

	got := e.Process(context.Background(), twoChunkText())

	if len(got) != 1 {
		t.Fatalf("expected 1 member from the surviving chunk, got %d", len(got))
	}
	if llm.calls != 4 {
		t.Errorf("expected 4 calls (3 retries + chunk 2), got %d", llm.calls)
	}
}

func TestProcess_EmptyRunOverwritesStaleMemory(t *testing.T) {
	mem := memory.NewInMemory()
	if err := mem.Set(context.Background(), memberMemoryKey, `["श्री. जुना"]`); err != nil {
		t.Fatal(err)
	}
	llm := &fakeLLM{responses: []string{`[]`, `[]`}}
	e := memberEngine(llm, mem)

	e.Process(context.Background(), twoChunkText())

	v, ok, err := mem.Get(context.Background(), memberMemoryKey)
	if err != nil || !ok {
		t.Fatalf("memory missing: %v", err)
	}
	if v != "[]" {
		t.Errorf("memory = %q, want stale value overwritten with empty list", v)
	}
}

func TestProcess_MemoryBounded(t *testing.T) {
	mem := memory.NewInMemory()
	llm := &fakeLLM{responses: []string{
		`[{"name":"श्री. अ","role":"","ministry":""},{"name":"श्री. ब","role":"","ministry":""}]`,
		`[{"name":"श्री. क","role":"","ministry":""}]`,
	}}
	e := memberEngine(llm, mem)

	e.Process(context.Background(), twoChunkText())

	v, ok, err := mem.Get(context.Background(), memberMemoryKey)
	if err != nil || !ok {
		t.Fatalf("memory missing: %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(v), &names); err != nil {
		t.Fatalf("memory not a name list: %q", v)
	}
	if len(names) != 1 {
		t.Fatalf("memory holds %d entries, want trailing window of 1", len(names))
	}
	if names[0] != "श्री. क" {
		t.Errorf("memory = %v, want last accepted entity", names)
	}
}

func TestProcess_MemoryEmbeddedInPrompt(t *testing.T) {
	mem := memory.NewInMemory()
	llm := &fakeLLM{responses: []string{
		`[{"name":"श्री. अ","role":"","ministry":""}]`,
		`[]`,
	}}
	e := memberEngine(llm, mem)

	e.Process(context.Background(), twoChunkText())

	if len(llm.prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[1], "श्री. अ") {
		t.Errorf("second prompt missing trailing memory:\n%s", llm.prompts[1])
	}
}

func TestClearMemory(t *testing.T) {
	mem := memory.NewInMemory()
	llm := &fakeLLM{responses: []string{`[{"name":"श्री. अ","role":"","ministry":""}]`}}
	e := memberEngine(llm, mem)

	e.Process(context.Background(), "एक ओळ")
	if err := e.ClearMemory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := mem.Get(context.Background(), memberMemoryKey); ok {
		t.Error("memory not cleared")
	}
}
