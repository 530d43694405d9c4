package match_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/aplus/pkg/adapters/scripted"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/scene"
	"github.com/stretchr/testify/require"
)

// player builds a player whose keys are prefixed with its name, e.g. "ann.action1".
func player(id int, name string) domain.PlayerSetting {
	actions := make(map[domain.PlayerAction]domain.Key, len(domain.ActionSequence))
	for _, a := range domain.ActionSequence {
		actions[a] = domain.Key(fmt.Sprintf("%s.%s", name, a))
	}
	return domain.PlayerSetting{ID: id, Name: name, Actions: actions}
}

func key(name string, a domain.PlayerAction) domain.Key {
	return domain.Key(fmt.Sprintf("%s.%s", name, a))
}

func round(name string, won int, objects ...domain.ObjectRef) domain.RoundSetting {
	return domain.RoundSetting{
		Name:          name,
		UsableObjects: objects,
		PointsMap:     map[domain.ScoreReason]int{domain.ScoreWon: won, domain.ScoreKillOtherByTrap: 10},
	}
}

type game struct {
	manager    *scene.Manager
	input      *scripted.Input
	arena      *scripted.Arena
	controller *match.Controller
	selection  *match.Selection
	placement  *match.Placement
	playing    *match.Playing
	ranking    *match.Ranking
	result     *match.Result
	stat       *domain.MapStat
}

// newGame wires a controller whose players confirm everything with action1.
func newGame(setting *domain.MapSetting, rounds []scripted.Round, opts ...scene.Option) *game {
	var auto []domain.Key
	for _, p := range setting.Players {
		auto = append(auto, key(p.Name, domain.ActionAction1))
	}
	g := &game{
		manager: scene.NewManager(opts...),
		input:   scripted.NewInput(nil, scripted.WithAutoRelease(auto...)),
		arena:   scripted.NewArena(rounds),
		stat:    domain.NewMapStat(setting),
	}
	g.selection = match.NewSelection(g.input)
	g.placement = match.NewPlacement(g.input)
	g.playing = match.NewPlaying(g.arena)
	g.ranking = match.NewRanking(g.input)
	g.result = match.NewResult(g.input)
	g.controller = match.NewController(match.States{
		Selection: g.selection,
		Placement: g.placement,
		Playing:   g.playing,
		Ranking:   g.ranking,
		Result:    g.result,
	})
	return g
}

// drive settles the manager and feeds frames until the stack is empty.
func drive(t *testing.T, ctx context.Context, m *scene.Manager, input interface{ NextFrame() }, maxFrames int) int {
	t.Helper()
	for frame := 0; frame < maxFrames; frame++ {
		require.NoError(t, m.Settle(ctx))
		if m.Depth() == 0 {
			return frame
		}
		input.NextFrame()
		m.Update(ctx)
	}
	require.FailNow(t, "stack did not empty", "after %d frames: %v", maxFrames, m.Snapshot())
	return maxFrames
}

func (g *game) play(t *testing.T, ctx context.Context) int {
	t.Helper()
	require.NoError(t, scene.Push[*domain.MapStat, struct{}](g.manager, g.controller, g.stat))
	return drive(t, ctx, g.manager, g.input, 100)
}
