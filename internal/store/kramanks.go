package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kramank statuses.
const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Kramank is one session volume under digitization.
type Kramank struct {
	ID        uuid.UUID
	Name      string
	Date      string
	Khand     string
	Status    string
	Error     string
	Pages     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Debate is one persisted debate span with its extracted fields.
type Debate struct {
	ID              uuid.UUID
	KramankID       uuid.UUID
	Seq             int
	Topic           string
	DocumentName    string
	Text            string
	Date            string
	QuestionNumbers []string
	AskedBy         []string
	AnsweredBy      []string
	Members         []string
	ImageNames      []string
}

// Member is one assembly member extracted from the members section.
type Member struct {
	ID        uuid.UUID
	KramankID uuid.UUID
	Name      string
	Role      string
	Ministry  string
}

// Resolution is one karyavali agenda item.
type Resolution struct {
	ID             uuid.UUID
	KramankID      uuid.UUID
	ResolutionNo   string
	ResolutionNoEn string
	Text           string
}

// Results is everything a pipeline run produces for one kramank.
type Results struct {
	Date        string
	Khand       string
	Debates     []Debate
	Members     []Member
	Resolutions []Resolution
}

// CreateKramank registers a volume in processing state and returns its id.
func (s *Store) CreateKramank(ctx context.Context, name string, pages int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kramanks (id, name, status, pages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`,
		id, name, StatusProcessing, pages,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert kramank: %w", err)
	}
	return id, nil
}

// WriteResults persists a completed run in one transaction and flips the
// kramank to processed. Reruns replace earlier rows for the same kramank.
func (s *Store) WriteResults(ctx context.Context, kramankID uuid.UUID, res Results) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE kramanks SET date = $1, khand = $2, status = $3, error = '', updated_at = now()
		WHERE id = $4`,
		res.Date, res.Khand, StatusProcessed, kramankID,
	)
	if err != nil {
		return fmt.Errorf("update kramank: %w", err)
	}

	for _, table := range []string{"debates", "members", "resolutions"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE kramank_id = $1`, table), kramankID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, d := range res.Debates {
		_, err = tx.Exec(ctx, `
			INSERT INTO debates (id, kramank_id, seq, topic, document_name, text, date,
				question_numbers, asked_by, answered_by, members, image_names, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())`,
			uuid.New(), kramankID, d.Seq, d.Topic, d.DocumentName, d.Text, d.Date,
			d.QuestionNumbers, d.AskedBy, d.AnsweredBy, d.Members, d.ImageNames,
		)
		if err != nil {
			return fmt.Errorf("insert debate %d: %w", d.Seq, err)
		}
	}

	for _, m := range res.Members {
		_, err = tx.Exec(ctx, `
			INSERT INTO members (id, kramank_id, name, role, ministry)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), kramankID, m.Name, m.Role, m.Ministry,
		)
		if err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}

	for _, r := range res.Resolutions {
		_, err = tx.Exec(ctx, `
			INSERT INTO resolutions (id, kramank_id, resolution_no, resolution_no_en, text)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), kramankID, r.ResolutionNo, r.ResolutionNoEn, r.Text,
		)
		if err != nil {
			return fmt.Errorf("insert resolution: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MarkFailed records a document-fatal failure.
func (s *Store) MarkFailed(ctx context.Context, kramankID uuid.UUID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE kramanks SET status = $1, error = $2, updated_at = now()
		WHERE id = $3`,
		StatusFailed, reason, kramankID,
	)
	return err
}

// GetKramank returns one kramank row.
func (s *Store) GetKramank(ctx context.Context, id uuid.UUID) (Kramank, error) {
	var k Kramank
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, coalesce(date, ''), coalesce(khand, ''), status, coalesce(error, ''),
			pages, created_at, updated_at
		FROM kramanks WHERE id = $1`, id,
	).Scan(&k.ID, &k.Name, &k.Date, &k.Khand, &k.Status, &k.Error, &k.Pages, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return Kramank{}, fmt.Errorf("get kramank: %w", err)
	}
	return k, nil
}

// StatusCounts reports how many kramanks sit in each status.
func (s *Store) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, count(*) FROM kramanks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListDebates returns a kramank's debates in reading order.
func (s *Store) ListDebates(ctx context.Context, kramankID uuid.UUID) ([]Debate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kramank_id, seq, topic, document_name, text, coalesce(date, ''),
			question_numbers, asked_by, answered_by, members, image_names
		FROM debates WHERE kramank_id = $1 ORDER BY seq`, kramankID)
	if err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	defer rows.Close()

	var out []Debate
	for rows.Next() {
		var d Debate
		err := rows.Scan(&d.ID, &d.KramankID, &d.Seq, &d.Topic, &d.DocumentName, &d.Text, &d.Date,
			&d.QuestionNumbers, &d.AskedBy, &d.AnsweredBy, &d.Members, &d.ImageNames)
		if err != nil {
			return nil, fmt.Errorf("scan debate: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListMembers returns a kramank's extracted members.
func (s *Store) ListMembers(ctx context.Context, kramankID uuid.UUID) ([]Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kramank_id, name, coalesce(role, ''), coalesce(ministry, '')
		FROM members WHERE kramank_id = $1 ORDER BY name`, kramankID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.KramankID, &m.Name, &m.Role, &m.Ministry); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListResolutions returns a kramank's karyavali items.
func (s *Store) ListResolutions(ctx context.Context, kramankID uuid.UUID) ([]Resolution, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kramank_id, resolution_no, coalesce(resolution_no_en, ''), text
		FROM resolutions WHERE kramank_id = $1 ORDER BY resolution_no_en, resolution_no`, kramankID)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		if err := rows.Scan(&r.ID, &r.KramankID, &r.ResolutionNo, &r.ResolutionNoEn, &r.Text); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
