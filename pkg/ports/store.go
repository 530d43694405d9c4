package ports

import (
	"context"

	"github.com/aretw0/aplus/pkg/domain"
)

// MatchStore keeps the records of finished matches.
type MatchStore interface {
	// Save stores record under record.ID.
	Save(ctx context.Context, record *domain.MatchRecord) error

	// Load retrieves a record.
	// Returns domain.ErrMatchNotFound if the match does not exist.
	Load(ctx context.Context, id string) (*domain.MatchRecord, error)

	// List returns every stored record, oldest first.
	List(ctx context.Context) ([]*domain.MatchRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error
}
