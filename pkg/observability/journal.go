package observability

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
)

// Entry is one finished transition.
type Entry struct {
	Kind  domain.TransitionKind `json:"kind"`
	From  string                `json:"from,omitempty"`
	To    string                `json:"to,omitempty"`
	Depth int                   `json:"depth"`
	Err   string                `json:"err,omitempty"`
}

// Journal records the transitions of a session in the order they finished.
// Safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Hooks returns lifecycle hooks appending to the journal.
func (j *Journal) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			entry := Entry{Kind: e.Kind, From: e.From, To: e.To, Depth: e.Depth}
			if e.Err != nil {
				entry.Err = e.Err.Error()
			}
			j.mu.Lock()
			j.entries = append(j.entries, entry)
			j.mu.Unlock()
		},
	}
}

// Entries returns a copy of the recorded transitions.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}
