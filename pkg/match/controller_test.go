package match_test

import (
	"context"
	"testing"

	"github.com/aretw0/aplus/pkg/adapters/scripted"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPlayerMap(passPoints, minRounds int) *domain.MapSetting {
	return &domain.MapSetting{
		Name: "campus",
		Rounds: []domain.RoundSetting{
			round("r1", 40, "brick", "trap"),
			round("r2", 70, "brick", "trap"),
			round("r3", 30, "brick", "trap"),
		},
		Players:       []domain.PlayerSetting{player(1, "ann"), player(2, "bo")},
		PassPoints:    passPoints,
		MinRoundCount: minRounds,
		Grid:          domain.GridSize{Width: 4, Height: 4},
	}
}

func annWins() scripted.Round {
	return scripted.Round{Outcomes: []scripted.Outcome{{PlayerID: 1, Won: true, WonCause: "goal"}}}
}

func TestController_PassThresholdEndsMatchEarly(t *testing.T) {
	ctx := context.Background()
	g := newGame(twoPlayerMap(100, 0), []scripted.Round{annWins(), annWins(), annWins()})

	g.play(t, ctx)

	assert.Equal(t, 2, g.arena.Starts(), "round 3 is never played")
	assert.Equal(t, []int{110, 0}, g.stat.CumulativeScores())
	assert.True(t, g.stat.Players[0].WonOverall)
	assert.False(t, g.stat.Players[1].WonOverall)
	assert.Equal(t, 2, g.stat.CurrentRound)
	assert.Equal(t, domain.RoundNone, g.stat.Rounds[0].State)
	assert.Equal(t, domain.RoundResult, g.stat.Rounds[1].State, "the last round played shows the result")
	assert.Equal(t, domain.RoundNone, g.stat.Rounds[2].State)
	assert.Len(t, g.stat.Placements, 4)

	record := domain.NewMatchRecord(g.stat)
	assert.Equal(t, 2, record.RoundsPlayed)
	require.Len(t, record.Winners(), 1)
	assert.Equal(t, "ann", record.Winners()[0].Name)
}

func TestController_MinRoundCountDelaysThreshold(t *testing.T) {
	ctx := context.Background()
	g := newGame(twoPlayerMap(100, 3), []scripted.Round{annWins(), annWins(), annWins()})

	g.play(t, ctx)

	assert.Equal(t, 3, g.arena.Starts())
	assert.Equal(t, []int{140, 0}, g.stat.CumulativeScores())
	assert.Equal(t, 3, g.stat.CurrentRound)
}

func TestController_TooEasyRoundAwardsNoPoints(t *testing.T) {
	ctx := context.Background()
	bothWin := scripted.Round{Outcomes: []scripted.Outcome{
		{PlayerID: 1, Won: true},
		{PlayerID: 2, Won: true, TrapKills: 1},
	}}
	g := newGame(twoPlayerMap(0, 0), []scripted.Round{bothWin, annWins(), bothWin})

	g.play(t, ctx)

	assert.True(t, g.stat.Rounds[0].TooEasyNoPoint)
	assert.False(t, g.stat.Rounds[1].TooEasyNoPoint)
	assert.True(t, g.stat.RoundPlayer(0, 0).Won)
	assert.True(t, g.stat.RoundPlayer(0, 1).Won)
	assert.Equal(t, 0, g.stat.RoundPlayer(0, 0).Score())
	assert.Equal(t, 10, g.stat.RoundPlayer(0, 1).Score(), "trap kills still count")
	assert.Equal(t, []int{70, 20}, g.stat.CumulativeScores())
	assert.True(t, g.stat.Players[0].WonOverall)
}

func TestController_TiedPlayersBothWin(t *testing.T) {
	ctx := context.Background()
	setting := twoPlayerMap(0, 0)
	setting.Rounds = setting.Rounds[:1]
	g := newGame(setting, nil)

	g.play(t, ctx)

	assert.Equal(t, []int{0, 0}, g.stat.CumulativeScores())
	assert.True(t, g.stat.Players[0].WonOverall)
	assert.True(t, g.stat.Players[1].WonOverall)
}

func TestController_RoundStatesFollowProgress(t *testing.T) {
	ctx := context.Background()
	setting := twoPlayerMap(0, 0)
	setting.Rounds = setting.Rounds[:1]
	g := newGame(setting, []scripted.Round{{Frames: 3, Outcomes: []scripted.Outcome{{PlayerID: 2, Won: true}}}})
	m := g.manager

	require.NoError(t, scene.Push[*domain.MapStat, struct{}](m, g.controller, g.stat))
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, g.selection, m.Top())
	assert.Equal(t, domain.RoundSelectingObjects, g.stat.Rounds[0].State)

	g.input.NextFrame()
	m.Update(ctx)
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, g.placement, m.Top())
	assert.Equal(t, domain.RoundPlacingObjects, g.stat.Rounds[0].State)

	g.input.NextFrame()
	m.Update(ctx)
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, g.playing, m.Top())
	assert.Equal(t, domain.RoundPlaying, g.stat.Rounds[0].State)
	assert.True(t, g.arena.Running())

	// Focus and two updates spend the three frames; the next update sees the end.
	for range 2 {
		m.Update(ctx)
		require.NoError(t, m.Settle(ctx))
		assert.Same(t, g.playing, m.Top())
	}
	m.Update(ctx)
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, g.ranking, m.Top())
	assert.Equal(t, domain.RoundRanking, g.stat.Rounds[0].State)
	assert.False(t, g.arena.Running())

	board := g.ranking.Board()
	require.Len(t, board.Rows, 2)
	assert.Equal(t, 40, board.Rows[1].Round)
	assert.Equal(t, 40, board.Rows[1].Total)
	assert.True(t, board.Rows[1].Won)
	assert.Equal(t, []string{"controller", "ranking"}, names(m.Snapshot()))

	g.input.NextFrame()
	m.Update(ctx)
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, g.result, m.Top())
	assert.Equal(t, domain.RoundResult, g.stat.Rounds[0].State)
	require.Len(t, g.result.Winners(), 1)
	assert.Equal(t, "bo", g.result.Winners()[0].Name)

	g.input.NextFrame()
	m.Update(ctx)
	require.NoError(t, m.Settle(ctx))
	assert.Zero(t, m.Depth())
}

func names(frames []scene.Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Name
	}
	return out
}

func TestController_ObserversFollowTheMatch(t *testing.T) {
	ctx := context.Background()
	setting := twoPlayerMap(0, 0)
	setting.Rounds = setting.Rounds[:2]
	g := newGame(setting, nil)

	var focused, boards int
	g.controller.Observe(&scene.ObserverHooks[*match.Controller]{
		OnFocus: func(context.Context, *match.Controller) error {
			focused++
			return nil
		},
	})
	g.ranking.Observe(&scene.ObserverHooks[*match.Ranking]{
		OnFocus: func(_ context.Context, r *match.Ranking) error {
			if len(r.Board().Rows) == 2 {
				boards++
			}
			return nil
		},
	})

	g.play(t, ctx)
	require.NoError(t, g.controller.Sync(ctx))
	require.NoError(t, g.ranking.Sync(ctx))

	// Start, then four children per round and the result.
	assert.Equal(t, 1+4*2+1, focused)
	assert.Equal(t, 2, boards)
}
