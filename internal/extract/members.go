package extract

import (
	"fmt"
	"log/slog"

	"github.com/vidhan-archive/kramank/internal/memory"
)

// Member is one legislative-assembly member extracted from the members-list
// section.
type Member struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Ministry string `json:"ministry"`
}

const memberMemoryKey = "member_parser_previous_members"

const memberPromptTemplate = `You are a document parser working on Marathi Vidhan Sabha member information.

Previous members processed:
%s

Extract the following structured data from the given text chunk:

- name: Full name of the member (e.g., "श्री. अजित अनंतराव पवार")
- role: Their position/role (e.g., "मुख्यमंत्री", "उपमुख्यमंत्री", "मंत्री", "राज्यमंत्री", "अध्यक्ष")
- ministry: Their department/ministry (e.g., "गृह", "नगरविकास", "कृषी", "ऊर्जा")

Return output as valid JSON array:
[
  {
    "name": "",
    "role": "",
    "ministry": ""
  },
  ...
]

IMPORTANT: When generating Marathi text responses:
1. Use EXACT text from the input text - do not modify or translate
2. Preserve all Marathi characters, numbers and formatting
3. Do not add any English text or translations
4. Return only the extracted Marathi text exactly as it appears in source
5. DO NOT include members that were already processed in previous chunks
6. Return an empty list [] if no new members are found in this chunk

Rare case handling:
- Member name is required. Never skip a name.
- If a chunk is missing the role or ministry value, create an entry with only the name and empty role and ministry values

DO NOT return extra text, markdown, or comments.

Text chunk:
%s`

// NewMemberExtractor builds the members-list instantiation of the engine.
// Identity is name+role: the same person can legitimately appear twice with
// different roles.
func NewMemberExtractor(llm Completer, mem memory.Store, opts Options, logger *slog.Logger) *ListEngine[Member] {
	spec := ListSpec[Member]{
		Name:       "members",
		MemoryKey:  memberMemoryKey,
		ItemSchema: memberItemSchema,
		BuildPrompt: func(previousJSON, chunk string) string {
			return fmt.Sprintf(memberPromptTemplate, previousJSON, chunk)
		},
		IdentityKey: func(m Member) string {
			if m.Name == "" {
				return ""
			}
			return m.Name + "|" + m.Role
		},
		MemorySummary: func(m Member) any { return m.Name },
	}
	return NewListEngine(llm, mem, spec, opts, logger)
}
