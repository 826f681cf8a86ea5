// Package memory backs the trailing extraction memory carried across LLM
// chunk calls. Values are small JSON summaries keyed per extractor type;
// the store only ever holds the configured trailing window, never a full
// history.
package memory

import (
	"context"
	"sync"
)

// Store is the key-value contract the extraction engine needs. Get reports
// a miss with ok=false rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// InMemory is a map-backed Store for tests and single-process runs.
type InMemory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{values: make(map[string]string)}
}

func (s *InMemory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *InMemory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
