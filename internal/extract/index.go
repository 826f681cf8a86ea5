package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// IndexMember is a member as listed in the index/table of contents.
type IndexMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// IndexResolution is a resolution entry from the index.
type IndexResolution struct {
	ResolutionNo string `json:"resolution_no"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PageNo       string `json:"page_no"`
}

// IndexSummary is the merged single-record result of index extraction.
type IndexSummary struct {
	Date        string            `json:"date"`
	Khand       string            `json:"khand"`
	Members     []IndexMember     `json:"members"`
	Resolutions []IndexResolution `json:"resolutions"`
}

const indexMemoryKey = "index_parser_previous_data"

const indexPromptTemplate = `You are a document parser working on Marathi Vidhan Sabha index/table of contents information.

Previous data processed:
%s

Extract the following structured data from the given Marathi text chunk:

1. Date Information: Look for dates in formats like "दिनांक", "तारीख", numerical dates
2. Khand (खंड/Section): Look for section numbers like "खंड १", "खंड २", etc.
3. Members: Names of members mentioned in the index
4. Resolutions: Resolution numbers, titles, and descriptions for the day

Return output as valid JSON object:
{
  "date": "extracted date in Marathi",
  "khand": "section number/name",
  "members": [
    {
      "name": "member name in Marathi",
      "role": "role/position if mentioned"
    }
  ],
  "resolutions": [
    {
      "resolution_no": "resolution number",
      "title": "resolution title in Marathi",
      "description": "brief description if available",
      "page_no": "page number if mentioned"
    }
  ]
}

IMPORTANT: When generating Marathi text responses:
1. Use EXACT text from the input text - do not modify or translate
2. Preserve all Marathi characters, numbers and formatting
3. Do not add any English text or translations
4. Return only the extracted Marathi text exactly as it appears in source
5. DO NOT include data that was already processed in previous chunks
6. Return empty arrays [] for members and resolutions if none found
7. Return null for date and khand if not found

DO NOT return extra text, markdown, or comments.

Text chunk:
%s`

// IndexExtractor runs the chunked protocol with object-merge semantics:
// date and khand are set once (first non-empty wins), member and resolution
// lists accumulate with identity-key dedup.
type IndexExtractor struct {
	llm    Completer
	mem    memory.Store
	opts   Options
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewIndexExtractor(llm Completer, mem memory.Store, opts Options, logger *slog.Logger) *IndexExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexExtractor{
		llm:    llm,
		mem:    mem,
		opts:   opts,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Process extracts the index summary from the joined index-section text.
func (e *IndexExtractor) Process(ctx context.Context, fullText string) *IndexSummary {
	chunks := SplitLines(fullText, e.opts.ChunkSize)
	e.logger.Info("processing text", "extractor", "index", "chars", len(fullText), "chunks", len(chunks))

	summary := &IndexSummary{}
	seenMembers := make(map[string]bool)
	seenResolutions := make(map[string]bool)

	for i, chunk := range chunks {
		prompt := fmt.Sprintf(indexPromptTemplate, e.loadMemory(ctx), chunk)

		raw, err := completeWithRetry(ctx, e.llm, prompt, e.opts, e.logger, e.sleep)
		if err != nil {
			e.logger.Error("chunk failed after retries, skipping chunk",
				"extractor", "index",
				"chunk", i+1,
				"error", err,
			)
			if i < len(chunks)-1 {
				e.sleep(e.opts.PaceDelay)
			}
			continue
		}

		if part, ok := e.parsePart(raw); ok {
			e.merge(summary, part, seenMembers, seenResolutions)
			e.saveMemory(ctx, summary)
		}

		if i < len(chunks)-1 {
			e.sleep(e.opts.PaceDelay)
		}
	}

	return summary
}

// ClearMemory removes the index extractor's trailing memory.
func (e *IndexExtractor) ClearMemory(ctx context.Context) error {
	return e.mem.Delete(ctx, indexMemoryKey)
}

func (e *IndexExtractor) parsePart(raw string) (*IndexSummary, bool) {
	cleaned := CleanResponse(raw)

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		sub, ok := ExtractObject(cleaned)
		if !ok || json.Unmarshal([]byte(sub), &generic) != nil {
			e.logger.Warn("unparseable index response", "response", truncate(cleaned, 200))
			return nil, false
		}
		cleaned = sub
	}

	if err := indexResponseSchema.Validate(generic); err != nil {
		e.logger.Warn("index response failed validation", "error", err)
		return nil, false
	}

	var part IndexSummary
	if err := json.Unmarshal([]byte(cleaned), &part); err != nil {
		e.logger.Warn("index response decode failed", "error", err)
		return nil, false
	}
	return &part, true
}

func (e *IndexExtractor) merge(summary, part *IndexSummary, seenMembers, seenResolutions map[string]bool) {
	if summary.Date == "" && part.Date != "" {
		summary.Date = part.Date
	}
	if summary.Khand == "" && part.Khand != "" {
		summary.Khand = part.Khand
	}
	for _, m := range part.Members {
		if m.Name == "" || seenMembers[m.Name] {
			continue
		}
		seenMembers[m.Name] = true
		summary.Members = append(summary.Members, m)
	}
	for _, r := range part.Resolutions {
		if r.ResolutionNo == "" || seenResolutions[r.ResolutionNo] {
			continue
		}
		seenResolutions[r.ResolutionNo] = true
		summary.Resolutions = append(summary.Resolutions, r)
	}
}

func (e *IndexExtractor) loadMemory(ctx context.Context) string {
	v, ok, err := e.mem.Get(ctx, indexMemoryKey)
	if err != nil {
		e.logger.Error("memory load failed", "key", indexMemoryKey, "error", err)
		return "{}"
	}
	if !ok || v == "" {
		return "{}"
	}
	return v
}

// saveMemory stores compact identifiers of the most recent entities only;
// the summary itself never goes into memory.
func (e *IndexExtractor) saveMemory(ctx context.Context, summary *IndexSummary) {
	mem := map[string]string{}
	if n := len(summary.Members); n > 0 {
		mem["last_member"] = summary.Members[n-1].Name
	}
	if n := len(summary.Resolutions); n > 0 {
		mem["last_resolution"] = summary.Resolutions[n-1].ResolutionNo
	}
	data, err := json.Marshal(mem)
	if err != nil {
		return
	}
	if err := e.mem.Set(ctx, indexMemoryKey, string(data)); err != nil {
		e.logger.Error("memory save failed", "key", indexMemoryKey, "error", err)
	}
}
