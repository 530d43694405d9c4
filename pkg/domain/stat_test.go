package domain_test

import (
	"testing"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRoundSetting() *domain.MapSetting {
	return &domain.MapSetting{
		Name:       "office",
		PassPoints: 100,
		Rounds: []domain.RoundSetting{
			{Name: "r1", UsableObjects: []domain.ObjectRef{"brick"}},
			{Name: "r2", PointsMap: map[domain.ScoreReason]int{domain.ScoreWon: 50}},
		},
		Players: []domain.PlayerSetting{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bo"}},
	}
}

func TestNewMapStat_Shape(t *testing.T) {
	stat := domain.NewMapStat(twoRoundSetting())

	assert.Equal(t, -1, stat.CurrentRound)
	assert.Nil(t, stat.Current())
	require.Len(t, stat.RoundPlayers, 2)
	require.Len(t, stat.RoundPlayers[0], 2)
	assert.NotSame(t, stat.RoundPlayer(0, 0), stat.RoundPlayer(1, 0))
	assert.Len(t, stat.OfPlayer(1), 2)
	assert.Equal(t, 1, stat.PlayerIndex(2))
	assert.Equal(t, -1, stat.PlayerIndex(9))
}

func TestMapStat_CumulativeScore(t *testing.T) {
	stat := domain.NewMapStat(twoRoundSetting())
	r0, r1 := stat.Rounds[0], stat.Rounds[1]

	stat.RoundPlayer(0, 0).ScoreChanges = append(stat.RoundPlayer(0, 0).ScoreChanges,
		r0.NewScoreChange(domain.ScoreWon, ""),
		r0.NewScoreChange(domain.ScoreKillOtherByTrap, "macbook"),
	)
	stat.RoundPlayer(1, 0).ScoreChanges = append(stat.RoundPlayer(1, 0).ScoreChanges, r1.NewScoreChange(domain.ScoreWon, ""))

	assert.Equal(t, 40+50, stat.CumulativeScore(0))
	assert.Equal(t, []int{90, 0}, stat.CumulativeScores())
}

func TestRoundSetting_NewScoreChangeDefaults(t *testing.T) {
	r := domain.RoundSetting{}
	c := r.NewScoreChange(domain.ScoreWon, "goal")

	assert.Equal(t, 30, c.Delta)
	assert.Equal(t, domain.Color("#00ff00"), c.RankColor)
	assert.Equal(t, "goal", c.Cause)
}

func TestMapSetting_Validate(t *testing.T) {
	s := twoRoundSetting()
	require.NoError(t, s.Validate())

	s.Players = append(s.Players, domain.PlayerSetting{ID: 1})
	assert.ErrorIs(t, s.Validate(), domain.ErrInvalidSetting)

	s = twoRoundSetting()
	s.Rounds = nil
	assert.ErrorIs(t, s.Validate(), domain.ErrInvalidSetting)
}

func TestNewMatchRecord(t *testing.T) {
	stat := domain.NewMapStat(twoRoundSetting())
	stat.CurrentRound = 2
	stat.RoundPlayer(0, 1).ScoreChanges = []domain.ScoreChange{{Reason: domain.ScoreWon, Delta: 30}}
	stat.Players[1].WonOverall = true

	rec := domain.NewMatchRecord(stat)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 2, rec.RoundsPlayed)
	require.Len(t, rec.Standings, 2)
	assert.Equal(t, "Bo", rec.Standings[0].Name)
	assert.Equal(t, []domain.Standing{rec.Standings[0]}, rec.Winners())

	c := rec.Clone()
	c.Standings[0].Score = 0
	assert.Equal(t, 30, rec.Standings[0].Score)
}
