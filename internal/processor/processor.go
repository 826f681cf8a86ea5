// Package processor orchestrates the kramank digitization pipeline:
// load OCR pages, classify sections, segment debates, run the chunked
// extractors, derive per-debate fields, persist, announce.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidhan-archive/kramank/internal/classify"
	"github.com/vidhan-archive/kramank/internal/events"
	"github.com/vidhan-archive/kramank/internal/extract"
	"github.com/vidhan-archive/kramank/internal/fields"
	"github.com/vidhan-archive/kramank/internal/ocr"
	"github.com/vidhan-archive/kramank/internal/segment"
	"github.com/vidhan-archive/kramank/internal/store"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	CreateKramank(ctx context.Context, name string, pages int) (uuid.UUID, error)
	WriteResults(ctx context.Context, kramankID uuid.UUID, res store.Results) error
	MarkFailed(ctx context.Context, kramankID uuid.UUID, reason string) error
	GetKramank(ctx context.Context, id uuid.UUID) (store.Kramank, error)
}

// Publisher emits pipeline lifecycle events.
type Publisher interface {
	Publish(subject string, data any) error
}

// MemberExtractor produces members from the members-list section.
type MemberExtractor interface {
	Process(ctx context.Context, text string) []extract.Member
	ClearMemory(ctx context.Context) error
}

// ResolutionExtractor produces karyavali items from the agenda section.
type ResolutionExtractor interface {
	Process(ctx context.Context, text string) []extract.Resolution
	ClearMemory(ctx context.Context) error
}

// IndexExtractor produces the merged index summary.
type IndexExtractor interface {
	Process(ctx context.Context, text string) *extract.IndexSummary
	ClearMemory(ctx context.Context) error
}

// DebateFieldExtractor derives the field set of a single debate span.
type DebateFieldExtractor interface {
	Process(ctx context.Context, text string) *extract.DebateFields
	ClearMemory(ctx context.Context) error
}

// Processor runs the pipeline for one kramank at a time.
type Processor struct {
	store        Store
	events       Publisher
	classifier   *classify.Classifier
	segmenter    *segment.Segmenter
	members      MemberExtractor
	resolutions  ResolutionExtractor
	index        IndexExtractor
	debateFields DebateFieldExtractor
	dataDir      string
	state        *RunState
	logger       *slog.Logger
}

func New(
	s Store,
	ev Publisher,
	classifier *classify.Classifier,
	segmenter *segment.Segmenter,
	members MemberExtractor,
	resolutions ResolutionExtractor,
	index IndexExtractor,
	debateFields DebateFieldExtractor,
	dataDir string,
	state *RunState,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:        s,
		events:       ev,
		classifier:   classifier,
		segmenter:    segmenter,
		members:      members,
		resolutions:  resolutions,
		index:        index,
		debateFields: debateFields,
		dataDir:      dataDir,
		state:        state,
		logger:       logger,
	}
}

// HandleKramankStored is the NATS handler for sabha.ocr.kramank.stored.
func (p *Processor) HandleKramankStored(subject string, data []byte) {
	ctx := context.Background()

	var evt events.KramankStored
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse stored event", "error", err)
		return
	}
	if evt.Name == "" {
		p.logger.Error("stored event missing kramank name")
		return
	}

	if p.state != nil && p.state.IsProcessed(evt.Name) {
		p.logger.Info("kramank already processed, skipping redelivery", "name", evt.Name)
		return
	}

	dir := evt.Dir
	if dir == "" {
		dir = filepath.Join(p.dataDir, evt.Name)
	}

	if _, err := p.ProcessNew(ctx, evt.Name, dir); err != nil {
		p.logger.Error("kramank processing failed", "name", evt.Name, "error", err)
		if p.state != nil {
			p.state.AddError(fmt.Sprintf("%s: %v", evt.Name, err))
			if err := p.state.Save(); err != nil {
				p.logger.Error("failed to save run state", "error", err)
			}
		}
		return
	}

	if p.state != nil {
		p.state.MarkProcessed(evt.Name)
		if err := p.state.Save(); err != nil {
			p.logger.Error("failed to save run state", "error", err)
		}
	}
}

// ProcessNew registers a kramank and runs the pipeline over its OCR dir.
func (p *Processor) ProcessNew(ctx context.Context, name, dir string) (uuid.UUID, error) {
	pages, err := ocr.LoadDir(dir)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load ocr pages: %w", err)
	}

	id, err := p.store.CreateKramank(ctx, name, len(pages))
	if err != nil {
		return uuid.Nil, fmt.Errorf("create kramank: %w", err)
	}

	if err := p.process(ctx, id, name, pages); err != nil {
		return id, err
	}
	return id, nil
}

// Reprocess reruns the pipeline for an already-registered kramank. An empty
// dir rederives the OCR location from the configured data dir and the
// kramank's name.
func (p *Processor) Reprocess(ctx context.Context, id uuid.UUID, dir string) error {
	k, err := p.store.GetKramank(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup kramank: %w", err)
	}

	if dir == "" {
		dir = filepath.Join(p.dataDir, k.Name)
	}
	pages, err := ocr.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("load ocr pages: %w", err)
	}

	return p.process(ctx, id, k.Name, pages)
}

func (p *Processor) process(ctx context.Context, id uuid.UUID, name string, pages []ocr.Page) error {
	p.logger.Info("processing kramank", "name", name, "id", id, "pages", len(pages))

	doc := p.classifier.Classify(pages)

	// A kramank without a debates section has nothing to digitize; the
	// whole document is rejected rather than silently stored empty.
	if len(doc.Debates) == 0 {
		return p.fail(ctx, id, name, "no debates section found")
	}

	memberList := p.members.Process(ctx, joinPages(doc.Members))
	resolutionList := p.resolutions.Process(ctx, joinPages(doc.Agenda))
	summary := p.index.Process(ctx, joinPages(doc.Index))

	spans := p.segmenter.Segment(doc.Debates)
	if len(spans) == 0 {
		return p.fail(ctx, id, name, "no debates recognized in debates section")
	}

	res := store.Results{
		Date:    summary.Date,
		Khand:   summary.Khand,
		Debates: p.buildDebates(ctx, id, spans, summary.Date),
	}
	for _, m := range memberList {
		res.Members = append(res.Members, store.Member{
			Name:     m.Name,
			Role:     m.Role,
			Ministry: m.Ministry,
		})
	}
	for _, r := range resolutionList {
		res.Resolutions = append(res.Resolutions, store.Resolution{
			ResolutionNo:   r.ResolutionNo,
			ResolutionNoEn: r.ResolutionNoEn,
			Text:           r.Text,
		})
	}

	if err := p.store.WriteResults(ctx, id, res); err != nil {
		return p.fail(ctx, id, name, fmt.Sprintf("persist results: %v", err))
	}

	p.clearMemories(ctx)
	if p.state != nil {
		p.state.DebatesFound += len(res.Debates)
		p.state.MembersFound += len(res.Members)
		p.state.ResolutionsFound += len(res.Resolutions)
	}

	if err := p.events.Publish(events.SubjectKramankProcessed, events.KramankProcessed{
		KramankID:   id.String(),
		Name:        name,
		Debates:     len(res.Debates),
		Members:     len(res.Members),
		Resolutions: len(res.Resolutions),
	}); err != nil {
		p.logger.Error("failed to publish processed event", "error", err)
	}

	p.logger.Info("kramank processed",
		"name", name,
		"debates", len(res.Debates),
		"members", len(res.Members),
		"resolutions", len(res.Resolutions),
	)
	return nil
}

// buildDebates turns segmented spans into persistable rows. Each span gets
// a model extraction pass and a deterministic regex pass over the cleaned
// text; model values come first and the regex pass backfills what the model
// missed.
func (p *Processor) buildDebates(ctx context.Context, kramankID uuid.UUID, spans []segment.Debate, sessionDate string) []store.Debate {
	out := make([]store.Debate, 0, len(spans))
	for _, sp := range spans {
		text := fields.Clean(sp.Text)
		llm := p.debateFields.Process(ctx, text)
		f := fields.Extract(text)

		date := fields.Clean(llm.Date)
		if date == "" {
			date = f.Date
		}
		if date == "" {
			date = sessionDate
		}

		topic := fields.ValidateTopic(sp.Topic)
		out = append(out, store.Debate{
			KramankID:       kramankID,
			Seq:             sp.Seq,
			Topic:           topic,
			DocumentName:    fields.DocumentName("", topic),
			Text:            text,
			Date:            date,
			QuestionNumbers: mergeUnique(fields.CleanAll(llm.QuestionNumbers), f.QuestionNumbers),
			AskedBy:         f.Participants.Askers,
			AnsweredBy:      mergeUnique(fields.CleanAll(llm.AnsweredBy), f.Participants.Answerers),
			Members:         mergeUnique(fields.CleanAll(llm.Members), f.Participants.All()),
			ImageNames:      sp.Images,
		})
	}
	return out
}

// mergeUnique concatenates a and b preserving order, dropping repeats.
func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range append(a, b...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// fail marks the kramank failed, announces it, and returns the error.
func (p *Processor) fail(ctx context.Context, id uuid.UUID, name, reason string) error {
	if err := p.store.MarkFailed(ctx, id, reason); err != nil {
		p.logger.Error("failed to mark kramank failed", "id", id, "error", err)
	}
	if err := p.events.Publish(events.SubjectKramankFailed, events.KramankFailed{
		KramankID: id.String(),
		Name:      name,
		Reason:    reason,
	}); err != nil {
		p.logger.Error("failed to publish failed event", "error", err)
	}
	return fmt.Errorf("kramank %s: %s", name, reason)
}

func (p *Processor) clearMemories(ctx context.Context) {
	for name, clear := range map[string]func(context.Context) error{
		"members":       p.members.ClearMemory,
		"resolutions":   p.resolutions.ClearMemory,
		"index":         p.index.ClearMemory,
		"debate_fields": p.debateFields.ClearMemory,
	} {
		if err := clear(ctx); err != nil {
			p.logger.Error("failed to clear extractor memory", "extractor", name, "error", err)
		}
	}
}

func joinPages(pages []ocr.Page) string {
	texts := make([]string, 0, len(pages))
	for _, pg := range pages {
		if strings.TrimSpace(pg.Text) != "" {
			texts = append(texts, pg.Text)
		}
	}
	return strings.Join(texts, "\n")
}
