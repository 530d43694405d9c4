package scripted_test

import (
	"context"
	"testing"

	"github.com/aretw0/aplus/pkg/adapters/scripted"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_ReplaysFramesThenAutoReleases(t *testing.T) {
	in := scripted.NewInput([]scripted.Frame{
		{Released: []domain.Key{"a"}},
		{Pressed: "b"},
	}, scripted.WithAutoRelease("enter"))

	assert.False(t, in.KeyUp("a"), "nothing is released before the first frame")

	in.NextFrame()
	assert.True(t, in.KeyUp("a"))
	_, ok := in.Pressed()
	assert.False(t, ok)

	in.NextFrame()
	assert.False(t, in.KeyUp("a"))
	key, ok := in.Pressed()
	assert.True(t, ok)
	assert.Equal(t, domain.Key("b"), key)
	assert.True(t, in.Exhausted())

	in.NextFrame()
	assert.True(t, in.KeyUp("enter"))
	assert.False(t, in.KeyUp("a"))

	in.Feed(scripted.Frame{Released: []domain.Key{"x"}})
	in.NextFrame()
	assert.True(t, in.KeyUp("x"))
	assert.False(t, in.KeyUp("enter"))
}

func TestArena_ScriptedRound(t *testing.T) {
	ctx := context.Background()
	stat := domain.NewMapStat(&domain.MapSetting{
		Name:    "arena",
		Rounds:  []domain.RoundSetting{{Name: "r1"}},
		Players: []domain.PlayerSetting{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bo"}},
	})
	stat.CurrentRound = 0

	a := scripted.NewArena([]scripted.Round{{
		Frames: 2,
		Outcomes: []scripted.Outcome{
			{PlayerID: 1, Won: true, WonCause: "goal", TrapKills: 1},
			{PlayerID: 2, Health: []domain.HealthChange{{Reason: domain.HealthByTrap, Delta: -1}}},
		},
	}})

	assert.False(t, a.Ended(), "an idle arena never ends")
	require.NoError(t, a.Start(ctx, stat))
	assert.True(t, a.Running())
	assert.False(t, a.Ended())
	assert.False(t, a.Ended())
	assert.True(t, a.Ended())

	results := a.Results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Won)
	assert.Equal(t, "goal", results[0].WonCause)
	require.Len(t, results[0].ScoreChanges, 1)
	assert.Equal(t, domain.ScoreKillOtherByTrap, results[0].ScoreChanges[0].Reason)
	assert.Equal(t, 10, results[0].ScoreChanges[0].Delta)
	assert.False(t, results[1].Won)
	assert.Len(t, results[1].HealthChanges, 1)

	require.NoError(t, a.Stop(ctx))
	assert.False(t, a.Running())
	assert.Equal(t, 1, a.Starts())
}

func TestArena_UnscriptedRoundEndsAtOnce(t *testing.T) {
	stat := domain.NewMapStat(&domain.MapSetting{
		Rounds:  []domain.RoundSetting{{Name: "r1"}},
		Players: []domain.PlayerSetting{{ID: 7}},
	})
	a := scripted.NewArena(nil)

	err := a.Start(context.Background(), stat)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "no round in progress yet")

	stat.CurrentRound = 0
	require.NoError(t, a.Start(context.Background(), stat))
	assert.True(t, a.Ended())
	results := a.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0].PlayerID)
	assert.False(t, results[0].Won)
}
