package ports

import (
	"context"

	"github.com/aretw0/aplus/pkg/domain"
)

// CharacterResult is the outcome of one player's character in a round.
type CharacterResult struct {
	PlayerID      int
	Won           bool
	WonCause      string
	HealthChanges []domain.HealthChange
	// ScoreChanges are the points earned during play, e.g. kills by a placed trap.
	// Winning points are added by the round itself.
	ScoreChanges []domain.ScoreChange
}

// Arena runs the playable part of a round.
type Arena interface {
	// Start spawns one character per player of stat for the current round.
	Start(ctx context.Context, stat *domain.MapStat) error

	// Ended reports whether every character has finished the round.
	Ended() bool

	// Results returns the outcome of every character, valid once Ended is true.
	Results() []CharacterResult

	// Stop despawns the characters.
	Stop(ctx context.Context) error
}
