package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
)

// Store implements ports.MatchStore in memory.
// Records live as long as the process. Safe for concurrent use.
type Store struct {
	data map[string]*domain.MatchRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.MatchRecord),
	}
}

// Save keeps a copy of record so later changes by the caller are not seen.
func (s *Store) Save(ctx context.Context, record *domain.MatchRecord) error {
	copied := record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.ID] = copied
	return nil
}

// Load retrieves a copy of the record.
func (s *Store) Load(ctx context.Context, id string) (*domain.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return record.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns copies of every record, oldest first.
func (s *Store) List(ctx context.Context) ([]*domain.MatchRecord, error) {
	s.mu.RLock()
	records := make([]*domain.MatchRecord, 0, len(s.data))
	for _, r := range s.data {
		records = append(records, r.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b *domain.MatchRecord) int {
		if c := a.FinishedAt.Compare(b.FinishedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return records, nil
}
