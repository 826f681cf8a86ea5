package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// DebateFields is the model-extracted field set for one debate span. Every
// span is an independent extraction; values are never deduplicated across
// spans.
type DebateFields struct {
	Date            string
	QuestionNumbers []string
	Members         []string
	AnsweredBy      []string
}

const debateFieldsMemoryKey = "debate_parser_previous_fields"

const debateFieldsPromptTemplate = `You are a document parser working on Marathi Vidhan Sabha debates.

Previous data processed:
%s

Extract the following structured data from the given debate text chunk:

- date: (e.g., "१३ मार्च २०००")
- question_number(s): (e.g., [45, 46])
- members: list of names involved (asking or speaking)
- topics: key issues or bill subjects
- answers_by: list of names who responded (with or without colon)

Return output as valid JSON:
{
  "date": "",
  "question_number": [],
  "members": [],
  "topics": [],
  "answers_by": []
}

IMPORTANT: When generating Marathi text responses:
1. Use EXACT text from the input text - do not modify or translate
2. Preserve all Marathi characters, numbers and formatting
3. Do not add any English text or translations
4. Return only the extracted Marathi text exactly as it appears in source
5. DO NOT include data that was already processed in previous chunks
6. Return empty arrays [] for lists with no values in this chunk
7. Return null for date if not found

DO NOT return extra text, markdown, or comments.

Text chunk:
%s`

// debateFieldsResponse is the raw per-chunk model payload. Question numbers
// come back as strings or bare numbers depending on the model's mood, so
// they are decoded leniently. Topics are requested for response-contract
// stability but the span heading is authoritative, so they are not carried.
type debateFieldsResponse struct {
	Date            *string           `json:"date"`
	QuestionNumbers []json.RawMessage `json:"question_number"`
	Members         []string          `json:"members"`
	AnsweredBy      []string          `json:"answers_by"`
}

// DebateFieldExtractor runs the chunked protocol over one debate span with
// object-merge semantics: date is set once, list fields accumulate with
// within-span dedup.
type DebateFieldExtractor struct {
	llm    Completer
	mem    memory.Store
	opts   Options
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewDebateFieldExtractor(llm Completer, mem memory.Store, opts Options, logger *slog.Logger) *DebateFieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebateFieldExtractor{
		llm:    llm,
		mem:    mem,
		opts:   opts,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Process extracts the field set for a single debate span.
func (e *DebateFieldExtractor) Process(ctx context.Context, spanText string) *DebateFields {
	// Spans are independent extractions; the previous span's trailing
	// memory must not seed this one's first prompt.
	if err := e.mem.Delete(ctx, debateFieldsMemoryKey); err != nil {
		e.logger.Error("memory reset failed", "key", debateFieldsMemoryKey, "error", err)
	}

	chunks := SplitLines(spanText, e.opts.ChunkSize)
	e.logger.Info("processing text", "extractor", "debate_fields", "chars", len(spanText), "chunks", len(chunks))

	acc := &DebateFields{}
	seenQuestions := make(map[string]bool)
	seenMembers := make(map[string]bool)
	seenAnswerers := make(map[string]bool)

	for i, chunk := range chunks {
		prompt := fmt.Sprintf(debateFieldsPromptTemplate, e.loadMemory(ctx), chunk)

		raw, err := completeWithRetry(ctx, e.llm, prompt, e.opts, e.logger, e.sleep)
		if err != nil {
			e.logger.Error("chunk failed after retries, skipping chunk",
				"extractor", "debate_fields",
				"chunk", i+1,
				"error", err,
			)
			if i < len(chunks)-1 {
				e.sleep(e.opts.PaceDelay)
			}
			continue
		}

		if part, ok := e.parsePart(raw); ok {
			e.merge(acc, part, seenQuestions, seenMembers, seenAnswerers)
			e.saveMemory(ctx, acc)
		}

		if i < len(chunks)-1 {
			e.sleep(e.opts.PaceDelay)
		}
	}

	return acc
}

// ClearMemory removes the debate-field extractor's trailing memory.
func (e *DebateFieldExtractor) ClearMemory(ctx context.Context) error {
	return e.mem.Delete(ctx, debateFieldsMemoryKey)
}

func (e *DebateFieldExtractor) parsePart(raw string) (*debateFieldsResponse, bool) {
	cleaned := CleanResponse(raw)

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		sub, ok := ExtractObject(cleaned)
		if !ok || json.Unmarshal([]byte(sub), &generic) != nil {
			e.logger.Warn("unparseable debate fields response", "response", truncate(cleaned, 200))
			return nil, false
		}
		cleaned = sub
	}

	if err := debateFieldsResponseSchema.Validate(generic); err != nil {
		e.logger.Warn("debate fields response failed validation", "error", err)
		return nil, false
	}

	var part debateFieldsResponse
	if err := json.Unmarshal([]byte(cleaned), &part); err != nil {
		e.logger.Warn("debate fields response decode failed", "error", err)
		return nil, false
	}
	return &part, true
}

func (e *DebateFieldExtractor) merge(acc *DebateFields, part *debateFieldsResponse, seenQuestions, seenMembers, seenAnswerers map[string]bool) {
	if acc.Date == "" && part.Date != nil && *part.Date != "" {
		acc.Date = *part.Date
	}
	for _, raw := range part.QuestionNumbers {
		q := questionNumberString(raw)
		if q == "" || seenQuestions[q] {
			continue
		}
		seenQuestions[q] = true
		acc.QuestionNumbers = append(acc.QuestionNumbers, q)
	}
	for _, m := range part.Members {
		if m == "" || seenMembers[m] {
			continue
		}
		seenMembers[m] = true
		acc.Members = append(acc.Members, m)
	}
	for _, a := range part.AnsweredBy {
		if a == "" || seenAnswerers[a] {
			continue
		}
		seenAnswerers[a] = true
		acc.AnsweredBy = append(acc.AnsweredBy, a)
	}
}

// questionNumberString normalizes a string-or-number question number to its
// textual form.
func questionNumberString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (e *DebateFieldExtractor) loadMemory(ctx context.Context) string {
	v, ok, err := e.mem.Get(ctx, debateFieldsMemoryKey)
	if err != nil {
		e.logger.Error("memory load failed", "key", debateFieldsMemoryKey, "error", err)
		return "{}"
	}
	if !ok || v == "" {
		return "{}"
	}
	return v
}

// saveMemory stores compact identifiers of the most recent values only.
func (e *DebateFieldExtractor) saveMemory(ctx context.Context, acc *DebateFields) {
	mem := map[string]string{}
	if n := len(acc.Members); n > 0 {
		mem["last_member"] = acc.Members[n-1]
	}
	if n := len(acc.QuestionNumbers); n > 0 {
		mem["last_question_no"] = acc.QuestionNumbers[n-1]
	}
	data, err := json.Marshal(mem)
	if err != nil {
		return
	}
	if err := e.mem.Set(ctx, debateFieldsMemoryKey, string(data)); err != nil {
		e.logger.Error("memory save failed", "key", debateFieldsMemoryKey, "error", err)
	}
}
