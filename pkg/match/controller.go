package match

import (
	"context"
	"slices"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/scene"
)

// States are the child states the controller pushes during a match.
// Each takes the match statistics as its argument.
type States struct {
	Selection scene.Node
	Placement scene.Node
	Playing   scene.Node
	Ranking   scene.Node
	Result    scene.Node
}

// Controller drives the round progression of a match.
type Controller struct {
	scene.Observable[*domain.MapStat, struct{}, *Controller]
	states States
}

// NewController creates a controller pushing the given child states.
func NewController(states States) *Controller {
	c := &Controller{states: states}
	c.Bind(c)
	return c
}

func (c *Controller) Name() string { return "controller" }

// Stat returns the statistics of the match in progress.
func (c *Controller) Stat() *domain.MapStat { return c.Arg() }

// Focus decides the next child state from the one that was just popped.
func (c *Controller) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := c.Observable.Focus(ctx, prev, result); err != nil {
		return err
	}
	stat := c.Arg()

	switch {
	case prev == nil:
		return c.rankFinished(stat)
	case prev == c.states.Selection:
		return c.advance(stat, domain.RoundPlacingObjects, c.states.Placement)
	case prev == c.states.Placement:
		return c.advance(stat, domain.RoundPlaying, c.states.Playing)
	case prev == c.states.Playing:
		return c.advance(stat, domain.RoundRanking, c.states.Ranking)
	case prev == c.states.Ranking:
		return c.rankFinished(stat)
	case prev == c.states.Result:
		return c.PopState(struct{}{})
	}
	c.Logger().Warn("controller focused by unknown state", "state", scene.NameOf(prev))
	return nil
}

func (c *Controller) advance(stat *domain.MapStat, state domain.RoundState, next scene.Node) error {
	if r := stat.Current(); r != nil {
		r.State = state
	}
	return c.PushState(next, stat)
}

func (c *Controller) rankFinished(stat *domain.MapStat) error {
	if r := stat.Current(); r != nil {
		r.State = domain.RoundNone
	}
	stat.CurrentRound++

	scores := stat.CumulativeScores()
	if stat.CurrentRound < len(stat.Rounds) && !passed(stat, scores) {
		stat.Rounds[stat.CurrentRound].State = domain.RoundSelectingObjects
		c.Logger().Info("round started", "round", stat.CurrentRound, "name", stat.Rounds[stat.CurrentRound].Name)
		return c.PushState(c.states.Selection, stat)
	}

	if len(scores) > 0 {
		best := slices.Max(scores)
		for j, p := range stat.Players {
			p.WonOverall = scores[j] == best
		}
	}
	// The last round played carries the result screen.
	if last := stat.CurrentRound - 1; last >= 0 && last < len(stat.Rounds) {
		stat.Rounds[last].State = domain.RoundResult
	}
	c.Logger().Info("match finished", "rounds_played", stat.CurrentRound, "scores", scores)
	return c.PushState(c.states.Result, stat)
}

// passed reports whether some player reached the pass points early. The threshold only
// applies once MinRoundCount rounds are done; zero pass points disables it.
func passed(stat *domain.MapStat, scores []int) bool {
	if stat.PassPoints <= 0 || stat.CurrentRound < stat.MinRoundCount {
		return false
	}
	return slices.ContainsFunc(scores, func(s int) bool { return s >= stat.PassPoints })
}
