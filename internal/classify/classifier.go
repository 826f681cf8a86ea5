// Package classify assigns OCR pages to kramank document sections.
//
// A kramank runs index -> members list -> karyavali (agenda) -> debates, in
// that order. Classification is a forward-only state machine over anchor
// patterns: once a later section starts, earlier sections never resume.
package classify

import (
	"log/slog"
	"regexp"

	"github.com/vidhan-archive/kramank/internal/ocr"
)

// Section labels a kramank document section.
type Section string

const (
	SectionIndex   Section = "index"
	SectionMembers Section = "members"
	SectionAgenda  Section = "karyawalis"
	SectionDebates Section = "debates"
)

// Anchors holds the section-boundary patterns. They are hand-tuned to the
// Maharashtra Vidhan Sabha document template; other templates supply their
// own set.
type Anchors struct {
	// MembersStart matches the administrative masthead that opens the
	// members list ("महाराष्ट्र शासन / राज्यपाल" header).
	MembersStart *regexp.Regexp
	// AgendaStart matches the कार्यावली weekday+date heading.
	AgendaStart *regexp.Regexp
	// DebatesStart matches a weekday+date line followed by the formal
	// sitting-opening phrase.
	DebatesStart *regexp.Regexp
}

const weekdays = `(?:सोमवार|मंगळवार|बुधवार|गुरुवार|शुक्रवार|शनिवार|रविवार)`

// DefaultAnchors returns the Vidhan Sabha template anchors.
func DefaultAnchors() Anchors {
	return Anchors{
		MembersStart: regexp.MustCompile(`महाराष्ट्र शासन\s+राज्यपाल`),
		AgendaStart:  regexp.MustCompile(`कार्यावली\s+` + weekdays + `,\s+दिनांक.*?\n`),
		DebatesStart: regexp.MustCompile(weekdays + `,\s+दिनांक.*?\n\s*विधानसभेची बैठक`),
	}
}

// Document holds the classified page buckets, each in input order.
type Document struct {
	Index   []ocr.Page
	Members []ocr.Page
	Agenda  []ocr.Page
	Debates []ocr.Page
}

// Classifier buckets pages into sections.
type Classifier struct {
	anchors Anchors
	logger  *slog.Logger
}

func New(anchors Anchors, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{anchors: anchors, logger: logger}
}

// Classify assigns every page to a section. It never fails: when no anchor
// matches anywhere, all pages land in the index bucket and the degradation
// is logged; the caller decides whether that is fatal.
func (c *Classifier) Classify(pages []ocr.Page) *Document {
	doc := &Document{}
	section := SectionIndex

	for _, page := range pages {
		section = c.advance(section, page.Text)

		// Supplementary pages (non-digit filename stem) are appendix
		// material filed under index regardless of the detected section.
		if page.IsSupplementary() {
			doc.Index = append(doc.Index, page)
			continue
		}

		switch section {
		case SectionIndex:
			doc.Index = append(doc.Index, page)
		case SectionMembers:
			doc.Members = append(doc.Members, page)
		case SectionAgenda:
			doc.Agenda = append(doc.Agenda, page)
		case SectionDebates:
			doc.Debates = append(doc.Debates, page)
		}
	}

	if section == SectionIndex && len(pages) > 0 {
		c.logger.Warn("no section anchors matched; all pages classified as index",
			"pages", len(pages),
		)
	}
	return doc
}

// advance applies the transition rules for one page. The machine only moves
// forward; SectionDebates is terminal.
func (c *Classifier) advance(current Section, text string) Section {
	switch current {
	case SectionIndex:
		if c.anchors.MembersStart.MatchString(text) {
			return SectionMembers
		}
	case SectionMembers:
		if c.anchors.AgendaStart.MatchString(text) {
			return SectionAgenda
		}
	case SectionAgenda:
		if c.anchors.DebatesStart.MatchString(text) {
			return SectionDebates
		}
	}
	return current
}
