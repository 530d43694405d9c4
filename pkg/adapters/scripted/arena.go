package scripted

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
)

// Outcome is the scripted result of one player's character.
type Outcome struct {
	PlayerID  int                   `json:"player_id" yaml:"player_id"`
	Won       bool                  `json:"won" yaml:"won"`
	WonCause  string                `json:"won_cause" yaml:"won_cause"`
	TrapKills int                   `json:"trap_kills" yaml:"trap_kills"`
	Health    []domain.HealthChange `json:"health" yaml:"health"`
}

// Round scripts one round: how many frames it lasts and how each character ends.
type Round struct {
	Frames   int       `json:"frames" yaml:"frames"`
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Arena implements ports.Arena from a per-round script.
// Rounds without a script end at once with nobody winning.
// Safe for concurrent use.
type Arena struct {
	mu      sync.Mutex
	rounds  []Round
	running bool
	left    int
	results []ports.CharacterResult
	starts  int
}

// NewArena creates an arena playing rounds in order of the match's round index.
func NewArena(rounds []Round) *Arena {
	return &Arena{rounds: slices.Clone(rounds)}
}

func (a *Arena) Start(ctx context.Context, stat *domain.MapStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	round := stat.Current()
	if round == nil {
		return fmt.Errorf("start arena without a round in progress: %w", domain.ErrInvalidOperation)
	}

	var script Round
	if stat.CurrentRound < len(a.rounds) {
		script = a.rounds[stat.CurrentRound]
	}
	outcomes := make(map[int]Outcome, len(script.Outcomes))
	for _, o := range script.Outcomes {
		outcomes[o.PlayerID] = o
	}

	results := make([]ports.CharacterResult, 0, len(stat.Players))
	for _, p := range stat.Players {
		o := outcomes[p.ID]
		r := ports.CharacterResult{
			PlayerID:      p.ID,
			Won:           o.Won,
			WonCause:      o.WonCause,
			HealthChanges: slices.Clone(o.Health),
		}
		for range o.TrapKills {
			r.ScoreChanges = append(r.ScoreChanges, round.NewScoreChange(domain.ScoreKillOtherByTrap, "trap"))
		}
		results = append(results, r)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	a.left = script.Frames
	a.results = results
	a.starts++
	return nil
}

// Ended counts down one frame per call and reports true once the round's frames are spent.
func (a *Arena) Ended() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return false
	}
	if a.left > 0 {
		a.left--
		return false
	}
	return true
}

func (a *Arena) Results() []ports.CharacterResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.results)
}

func (a *Arena) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	return nil
}

// Running reports whether a round is in progress.
func (a *Arena) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Starts returns how many rounds the arena started.
func (a *Arena) Starts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts
}
