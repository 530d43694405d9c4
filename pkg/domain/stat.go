package domain

import "slices"

// RoundState is the progress of a round within a match.
type RoundState int

const (
	RoundNone RoundState = iota
	RoundSelectingObjects
	RoundPlacingObjects
	RoundPlaying
	RoundRanking
	RoundResult
)

func (s RoundState) String() string {
	switch s {
	case RoundSelectingObjects:
		return "selecting_objects"
	case RoundPlacingObjects:
		return "placing_objects"
	case RoundPlaying:
		return "playing"
	case RoundRanking:
		return "ranking"
	case RoundResult:
		return "result"
	}
	return "none"
}

// HealthChange records a change of a character's health during a round.
type HealthChange struct {
	Reason HealthReason `json:"reason"`
	Delta  int          `json:"delta"`
	Cause  string       `json:"cause,omitempty"`
}

// ScoreChange records points earned by a player during a round.
type ScoreChange struct {
	Reason    ScoreReason `json:"reason"`
	Delta     int         `json:"delta"`
	RankColor Color       `json:"rank_color"`
	Cause     string      `json:"cause,omitempty"`
}

// Placement is an object placed on the map grid.
type Placement struct {
	Object   ObjectRef `json:"object"`
	PlayerID int       `json:"player_id"`
	Round    int       `json:"round"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
}

// RoundStat is the mutable state of one round.
type RoundStat struct {
	RoundSetting
	Order          int        `json:"order"`
	State          RoundState `json:"state"`
	TooEasyNoPoint bool       `json:"too_easy_no_point"`
}

// PlayerStat is the mutable state of one player across the match.
type PlayerStat struct {
	PlayerSetting
	Order      int  `json:"order"`
	WonOverall bool `json:"won_overall"`
}

// RoundPlayerStat is what one player did in one round.
type RoundPlayerStat struct {
	SelectedObject ObjectRef      `json:"selected_object,omitempty"`
	Placement      *Placement     `json:"placement,omitempty"`
	Won            bool           `json:"won"`
	HealthChanges  []HealthChange `json:"health_changes"`
	ScoreChanges   []ScoreChange  `json:"score_changes"`
}

// Score sums the score deltas of the round.
func (s *RoundPlayerStat) Score() int {
	total := 0
	for _, c := range s.ScoreChanges {
		total += c.Delta
	}
	return total
}

// MapStat holds the statistics of a match in progress.
// It is shared by the round controller and its child states; only the playing state
// appends health and score changes.
type MapStat struct {
	Name          string
	MinRoundCount int
	PassPoints    int
	Grid          GridSize
	Rounds        []*RoundStat
	Players       []*PlayerStat
	// RoundPlayers is indexed by [round][player].
	RoundPlayers [][]*RoundPlayerStat
	// CurrentRound is -1 until the first round starts.
	CurrentRound int
	Placements   []Placement
}

// NewMapStat builds empty statistics for setting.
func NewMapStat(setting *MapSetting) *MapStat {
	stat := &MapStat{
		Name:          setting.Name,
		MinRoundCount: setting.MinRoundCount,
		PassPoints:    setting.PassPoints,
		Grid:          setting.Grid,
		CurrentRound:  -1,
	}
	for i, r := range setting.Rounds {
		r.UsableObjects = slices.Clone(r.UsableObjects)
		stat.Rounds = append(stat.Rounds, &RoundStat{RoundSetting: r, Order: i})
	}
	for j, p := range setting.Players {
		stat.Players = append(stat.Players, &PlayerStat{PlayerSetting: p, Order: j})
	}
	stat.RoundPlayers = make([][]*RoundPlayerStat, len(stat.Rounds))
	for i := range stat.Rounds {
		row := make([]*RoundPlayerStat, len(stat.Players))
		for j := range row {
			row[j] = &RoundPlayerStat{}
		}
		stat.RoundPlayers[i] = row
	}
	return stat
}

// Current returns the round in progress, or nil outside of rounds.
func (m *MapStat) Current() *RoundStat {
	if m.CurrentRound < 0 || m.CurrentRound >= len(m.Rounds) {
		return nil
	}
	return m.Rounds[m.CurrentRound]
}

// RoundPlayer returns the stat of player in round.
func (m *MapStat) RoundPlayer(round, player int) *RoundPlayerStat {
	return m.RoundPlayers[round][player]
}

// OfRound returns the stats of every player in round, in player order.
func (m *MapStat) OfRound(round int) []*RoundPlayerStat {
	return m.RoundPlayers[round]
}

// OfPlayer returns the stats of player across every round, in round order.
func (m *MapStat) OfPlayer(player int) []*RoundPlayerStat {
	out := make([]*RoundPlayerStat, len(m.Rounds))
	for i := range m.Rounds {
		out[i] = m.RoundPlayers[i][player]
	}
	return out
}

// PlayerIndex returns the order of the player with id, or -1.
func (m *MapStat) PlayerIndex(id int) int {
	return slices.IndexFunc(m.Players, func(p *PlayerStat) bool { return p.ID == id })
}

// CumulativeScore sums every score delta of player over all rounds.
func (m *MapStat) CumulativeScore(player int) int {
	total := 0
	for _, s := range m.OfPlayer(player) {
		total += s.Score()
	}
	return total
}

// CumulativeScores returns CumulativeScore for every player, in player order.
func (m *MapStat) CumulativeScores() []int {
	out := make([]int, len(m.Players))
	for j := range m.Players {
		out[j] = m.CumulativeScore(j)
	}
	return out
}

// Occupied reports whether a placed object already sits on (x, y).
func (m *MapStat) Occupied(x, y int) bool {
	return slices.ContainsFunc(m.Placements, func(p Placement) bool { return p.X == x && p.Y == y })
}
