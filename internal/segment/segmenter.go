// Package segment carves classified debate pages into per-topic spans.
package segment

import (
	"log/slog"
	"strings"

	"github.com/vidhan-archive/kramank/internal/match"
	"github.com/vidhan-archive/kramank/internal/ocr"
)

// Debate is one contiguous transcript block attributed to a heading. Spans
// are mutated only during segmentation; downstream stages treat them as
// read-only.
type Debate struct {
	Topic  string
	Text   string
	Images []string
	Seq    int
}

// Segmenter turns ordered debate pages into ordered Debate spans.
type Segmenter struct {
	matcher *match.Matcher
	logger  *slog.Logger
}

func New(matcher *match.Matcher, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{matcher: matcher, logger: logger}
}

// Segment processes pages in input order. No single heading or page failure
// aborts the run: unlocatable headings are skipped, headingless pages are
// appended to the previous span, and the result may carry fewer spans than
// the total heading count.
func (s *Segmenter) Segment(pages []ocr.Page) []Debate {
	var debates []Debate

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			s.logger.Warn("empty page text, skipping", "image", page.Image)
			continue
		}

		if len(page.Headings) == 0 {
			// Pure continuation: the topic carried over a page boundary.
			if len(debates) == 0 {
				s.logger.Warn("headingless page with no preceding debate, dropping",
					"image", page.Image,
				)
				continue
			}
			last := &debates[len(debates)-1]
			last.Text += "\n" + page.Text
			appendImage(last, page.Image)
			continue
		}

		s.segmentPage(page, &debates)
	}

	for i := range debates {
		debates[i].Seq = i + 1
	}

	s.logger.Info("segmentation complete", "pages", len(pages), "debates", len(debates))
	return debates
}

func (s *Segmenter) segmentPage(page ocr.Page, debates *[]Debate) {
	for i, heading := range page.Headings {
		if !validHeading(heading) {
			s.logger.Warn("skipping invalid heading", "heading", truncate(heading, 50))
			continue
		}

		start := s.matcher.Locate(heading, page.Text)
		if start == match.NotFound {
			s.logger.Warn("heading not found in page text",
				"heading", truncate(heading, 50),
				"image", page.Image,
			)
			continue
		}

		end := s.spanEnd(page, i, start)
		text := strings.TrimSpace(page.Text[start:end])
		if len([]rune(text)) <= 1 {
			s.logger.Warn("debate text too short, discarding", "heading", truncate(heading, 50))
			continue
		}

		s.addSpan(debates, strings.TrimSpace(heading), text, page.Image)
	}
}

// spanEnd returns the byte offset where the span starting at start stops:
// the position of the FIRST valid heading after idx, or the end of the page
// text. When that heading cannot be located after start, the span runs to
// the end of the page rather than being cut at some later heading.
func (s *Segmenter) spanEnd(page ocr.Page, idx, start int) int {
	for j := idx + 1; j < len(page.Headings); j++ {
		next := page.Headings[j]
		if !validHeading(next) {
			continue
		}
		pos := s.matcher.Locate(next, page.Text)
		if pos == match.NotFound || pos <= start {
			break
		}
		return pos
	}
	return len(page.Text)
}

// addSpan appends a new span, or merges into the previous one when the same
// heading was re-OCR'd at a page boundary.
func (s *Segmenter) addSpan(debates *[]Debate, topic, text, image string) {
	if n := len(*debates); n > 0 && (*debates)[n-1].Topic == topic {
		last := &(*debates)[n-1]
		last.Text += "\n" + text
		appendImage(last, image)
		return
	}
	*debates = append(*debates, Debate{
		Topic:  topic,
		Text:   text,
		Images: []string{image},
	})
}

func appendImage(d *Debate, image string) {
	for _, existing := range d.Images {
		if existing == image {
			return
		}
	}
	d.Images = append(d.Images, image)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
