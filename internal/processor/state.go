package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunState tracks pipeline progress across restarts. Redelivered stored
// events for an already-processed kramank are skipped against it.
type RunState struct {
	StartedAt        time.Time `json:"started_at"`
	LastProcessedAt  time.Time `json:"last_processed_at"`
	Processed        []string  `json:"processed"`
	DebatesFound     int       `json:"debates_found"`
	MembersFound     int       `json:"members_found"`
	ResolutionsFound int       `json:"resolutions_found"`
	Errors           []string  `json:"errors"`

	path string // not serialized
}

// LoadRunState loads the run state from disk, or creates a new one.
func LoadRunState(path string) (*RunState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RunState{
				StartedAt: time.Now().UTC(),
				path:      path,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = path
	return &s, nil
}

// Save persists the state to disk.
func (s *RunState) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the named kramank has already been processed.
func (s *RunState) IsProcessed(name string) bool {
	for _, n := range s.Processed {
		if n == name {
			return true
		}
	}
	return false
}

// MarkProcessed records a kramank as processed.
func (s *RunState) MarkProcessed(name string) {
	s.Processed = append(s.Processed, name)
}

// AddError records a processing error.
func (s *RunState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
