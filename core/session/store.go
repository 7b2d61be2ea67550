package session

import (
	"context"
	"sync"
)

// Store persists the session record for a single browser context.
// Read returns nil, nil when nothing has been stored yet.
type Store interface {
	Read(ctx context.Context) (*Record, error)
	Write(ctx context.Context, rec Record) error
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

// NewMemoryStore returns an empty MemoryStore, optionally seeded with rec.
func NewMemoryStore(rec ...Record) *MemoryStore {
	s := &MemoryStore{}
	if len(rec) > 0 {
		r := rec[0]
		r.User = r.User.Clone()
		s.rec = &r
	}
	return s
}

func (s *MemoryStore) Read(_ context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return nil, nil
	}
	r := *s.rec
	r.User = r.User.Clone()
	return &r, nil
}

func (s *MemoryStore) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.User = rec.User.Clone()
	s.rec = &rec
	return nil
}
