package extract

import (
	"fmt"
	"log/slog"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// Resolution is one numbered agenda item from the karyavali section.
type Resolution struct {
	ResolutionNo   string `json:"resolution_no"`
	ResolutionNoEn string `json:"resolution_no_en"`
	Text           string `json:"text"`
}

const resolutionMemoryKey = "karyavali_parser_previous_resolutions"

const resolutionPromptTemplate = `You are a document parser working on Marathi Vidhan Sabha karyavali (resolutions).

Previous resolutions processed:
%s

Extract the following structured data from the given text chunk:

- resolution_no: Resolution number (e.g., "१", "२", "३")
- text: The complete resolution text
- resolution_no_en: Resolution number in English (e.g., "1", "2", "3")

Return output as valid JSON array:
[
  {
    "resolution_no": "as in source text",
    "text": "as in source text",
    "resolution_no_en": "resolution number in english"
  },
  ...
]

IMPORTANT: When generating Marathi text responses:
1. Use EXACT text from the input text - do not modify or translate
2. Preserve all Marathi characters, numbers and formatting
3. Do not add any English text or translations
4. Return only the extracted Marathi text exactly as it appears in source
5. DO NOT include resolutions that were already processed in previous chunks
6. Return an empty list [] if no new resolutions are found in this chunk

DO NOT return extra text, markdown, or comments.

Text chunk:
%s`

// NewResolutionExtractor builds the karyavali instantiation of the engine.
func NewResolutionExtractor(llm Completer, mem memory.Store, opts Options, logger *slog.Logger) *ListEngine[Resolution] {
	spec := ListSpec[Resolution]{
		Name:       "resolutions",
		MemoryKey:  resolutionMemoryKey,
		ItemSchema: resolutionItemSchema,
		BuildPrompt: func(previousJSON, chunk string) string {
			return fmt.Sprintf(resolutionPromptTemplate, previousJSON, chunk)
		},
		IdentityKey: func(r Resolution) string {
			if r.ResolutionNo == "" || r.Text == "" {
				return ""
			}
			return r.ResolutionNo + "|" + r.Text
		},
		MemorySummary: func(r Resolution) any { return r.ResolutionNo },
	}
	return NewListEngine(llm, mem, spec, opts, logger)
}
