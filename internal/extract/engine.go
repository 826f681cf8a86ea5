// Package extract implements chunked LLM extraction with bounded trailing
// memory.
//
// Kramank sections run to tens of thousands of characters, far past a
// model's reliable extraction window, so text is processed chunk by chunk.
// Naive per-chunk extraction re-emits entities spanning a chunk boundary;
// the engine therefore carries a trailing memory of the last k accepted
// entities into each prompt and dedups every candidate against the full
// accumulator. Memory stays k entities no matter how long the document is,
// keeping prompt size constant.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// Completer is the model-invocation collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Options carries the retry, pacing and chunking policies as configuration
// rather than hardcoded control flow.
type Options struct {
	ChunkSize      int
	TrailingWindow int // k: entities carried across chunk boundaries
	MaxRetries     int
	RetryDelay     time.Duration
	PaceDelay      time.Duration
	MaxTokens      int
}

// DefaultOptions returns the production extraction policy.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      2000,
		TrailingWindow: 1,
		MaxRetries:     2,
		RetryDelay:     time.Second,
		PaceDelay:      2 * time.Second,
		MaxTokens:      1024,
	}
}

// ListSpec describes one list-extraction instantiation of the engine.
type ListSpec[T any] struct {
	Name       string
	MemoryKey  string
	ItemSchema *jsonschema.Schema

	// BuildPrompt embeds the trailing-memory JSON and the chunk text into
	// the extractor's instruction template.
	BuildPrompt func(previousJSON, chunk string) string

	// IdentityKey returns the dedup key for an entity; empty means the
	// entity is missing required identity fields and must be dropped.
	IdentityKey func(T) string

	// MemorySummary reduces an entity to the compact form stored in
	// trailing memory (identifiers only, never the full entity).
	MemorySummary func(T) any
}

// ListEngine runs the chunked extraction loop for one entity type.
type ListEngine[T any] struct {
	llm    Completer
	mem    memory.Store
	spec   ListSpec[T]
	opts   Options
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewListEngine[T any](llm Completer, mem memory.Store, spec ListSpec[T], opts Options, logger *slog.Logger) *ListEngine[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListEngine[T]{
		llm:    llm,
		mem:    mem,
		spec:   spec,
		opts:   opts,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Process splits fullText into line-bounded chunks and extracts entities
// chunk by chunk. A chunk whose retries are exhausted contributes nothing;
// later chunks still run, so the result is partial rather than truncated.
func (e *ListEngine[T]) Process(ctx context.Context, fullText string) []T {
	chunks := SplitLines(fullText, e.opts.ChunkSize)
	e.logger.Info("processing text", "extractor", e.spec.Name, "chars", len(fullText), "chunks", len(chunks))

	var accepted []T
	seen := make(map[string]bool)

	for i, chunk := range chunks {
		prompt := e.spec.BuildPrompt(e.loadMemory(ctx), chunk)

		raw, err := completeWithRetry(ctx, e.llm, prompt, e.opts, e.logger, e.sleep)
		if err != nil {
			e.logger.Error("chunk failed after retries, skipping chunk",
				"extractor", e.spec.Name,
				"chunk", i+1,
				"accepted", len(accepted),
				"error", err,
			)
			if i < len(chunks)-1 {
				e.sleep(e.opts.PaceDelay)
			}
			continue
		}

		added := 0
		for _, item := range e.parseItems(raw) {
			key := e.spec.IdentityKey(item)
			if key == "" {
				continue
			}
			if seen[key] {
				e.logger.Info("duplicate entity discarded", "extractor", e.spec.Name, "key", key)
				continue
			}
			seen[key] = true
			accepted = append(accepted, item)
			added++
		}

		// Saved even when nothing has been accepted yet: an empty list
		// overwrites any stale carry-over from a previous run.
		e.saveMemory(ctx, accepted)
		e.logger.Info("chunk processed",
			"extractor", e.spec.Name,
			"chunk", i+1,
			"added", added,
			"total", len(accepted),
		)

		if i < len(chunks)-1 {
			e.sleep(e.opts.PaceDelay)
		}
	}

	return accepted
}

// ClearMemory removes the extractor's trailing memory. Called once per
// document, after processing completes.
func (e *ListEngine[T]) ClearMemory(ctx context.Context) error {
	return e.mem.Delete(ctx, e.spec.MemoryKey)
}

// parseItems turns a raw model response into validated entities. Malformed
// items are dropped individually; an unparseable response yields nothing.
func (e *ListEngine[T]) parseItems(raw string) []T {
	cleaned := CleanResponse(raw)

	var rawItems []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rawItems); err != nil {
		sub, ok := ExtractArray(cleaned)
		if !ok || json.Unmarshal([]byte(sub), &rawItems) != nil {
			e.logger.Warn("unparseable chunk response",
				"extractor", e.spec.Name,
				"response", truncate(cleaned, 200),
			)
			return nil
		}
	}

	var items []T
	for _, ri := range rawItems {
		var generic any
		if err := json.Unmarshal(ri, &generic); err != nil {
			continue
		}
		if e.spec.ItemSchema != nil {
			if err := e.spec.ItemSchema.Validate(generic); err != nil {
				e.logger.Warn("dropping malformed item", "extractor", e.spec.Name, "error", err)
				continue
			}
		}
		var item T
		if err := json.Unmarshal(ri, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (e *ListEngine[T]) loadMemory(ctx context.Context) string {
	v, ok, err := e.mem.Get(ctx, e.spec.MemoryKey)
	if err != nil {
		e.logger.Error("memory load failed", "key", e.spec.MemoryKey, "error", err)
		return "[]"
	}
	if !ok || v == "" {
		return "[]"
	}
	return v
}

// saveMemory overwrites the trailing memory with the last k accepted
// entities, reduced to their summary form.
func (e *ListEngine[T]) saveMemory(ctx context.Context, accepted []T) {
	tail := accepted
	if k := e.opts.TrailingWindow; k > 0 && len(tail) > k {
		tail = tail[len(tail)-k:]
	}
	summaries := make([]any, 0, len(tail))
	for _, item := range tail {
		summaries = append(summaries, e.spec.MemorySummary(item))
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		e.logger.Error("memory marshal failed", "key", e.spec.MemoryKey, "error", err)
		return
	}
	if err := e.mem.Set(ctx, e.spec.MemoryKey, string(data)); err != nil {
		e.logger.Error("memory save failed", "key", e.spec.MemoryKey, "error", err)
	}
}

// completeWithRetry invokes the model with bounded retries and a fixed
// delay between attempts.
func completeWithRetry(ctx context.Context, llm Completer, prompt string, opts Options, logger *slog.Logger, sleep func(time.Duration)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			sleep(opts.RetryDelay)
		}
		raw, err := llm.Complete(ctx, prompt, opts.MaxTokens)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		logger.Warn("model call failed", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
