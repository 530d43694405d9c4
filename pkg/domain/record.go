package domain

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Standing is a player's final position in a match.
type Standing struct {
	PlayerID   int    `json:"player_id"`
	Name       string `json:"name"`
	Color      Color  `json:"color"`
	Score      int    `json:"score"`
	WonOverall bool   `json:"won_overall"`
}

// MatchRecord summarises a finished match.
type MatchRecord struct {
	ID           string     `json:"id"`
	Map          string     `json:"map"`
	RoundsPlayed int        `json:"rounds_played"`
	Standings    []Standing `json:"standings"`
	FinishedAt   time.Time  `json:"finished_at"`
}

// NewMatchRecord captures the outcome of stat. Standings are sorted by score, highest first,
// keeping player order among ties.
func NewMatchRecord(stat *MapStat) *MatchRecord {
	scores := stat.CumulativeScores()
	standings := make([]Standing, len(stat.Players))
	for j, p := range stat.Players {
		standings[j] = Standing{
			PlayerID:   p.ID,
			Name:       p.Name,
			Color:      p.Color,
			Score:      scores[j],
			WonOverall: p.WonOverall,
		}
	}
	slices.SortStableFunc(standings, func(a, b Standing) int { return cmp.Compare(b.Score, a.Score) })

	played := stat.CurrentRound
	if played > len(stat.Rounds) {
		played = len(stat.Rounds)
	}
	if played < 0 {
		played = 0
	}
	return &MatchRecord{
		ID:           uuid.NewString(),
		Map:          stat.Name,
		RoundsPlayed: played,
		Standings:    standings,
		FinishedAt:   time.Now(),
	}
}

// Winners returns the standings flagged as overall winners.
func (r *MatchRecord) Winners() []Standing {
	var out []Standing
	for _, s := range r.Standings {
		if s.WonOverall {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy of the record.
func (r *MatchRecord) Clone() *MatchRecord {
	c := *r
	c.Standings = slices.Clone(r.Standings)
	return &c
}
