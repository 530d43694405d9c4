package domain

import (
	"fmt"
	"time"
)

// Key identifies a physical input key, e.g. "a", "Left" or "Enter".
type Key string

// Color is a hex color string such as "#00ff00".
type Color string

// ObjectRef names an object prefab a player can select and place.
type ObjectRef string

// PlayerAction is a logical input action bound to a key per player.
type PlayerAction string

const (
	ActionLeft    PlayerAction = "left"
	ActionRight   PlayerAction = "right"
	ActionUp      PlayerAction = "up"
	ActionDown    PlayerAction = "down"
	ActionAction1 PlayerAction = "action1"
	ActionAction2 PlayerAction = "action2"
)

// ActionSequence is the order in which actions are assigned during key binding.
var ActionSequence = []PlayerAction{
	ActionUp, ActionLeft, ActionDown, ActionRight, ActionAction1, ActionAction2,
}

// ScoreReason explains a score change.
type ScoreReason string

const (
	ScoreNo              ScoreReason = "no"
	ScoreWon             ScoreReason = "won"
	ScoreKillOtherByTrap ScoreReason = "kill_other_by_trap"
)

// HealthReason explains a health change.
type HealthReason string

const (
	HealthNo       HealthReason = "no"
	HealthByTrap   HealthReason = "by_trap"
	HealthExitArea HealthReason = "exit_area"
)

// DefaultPointsMap is used for rounds that do not configure their own points.
func DefaultPointsMap() map[ScoreReason]int {
	return map[ScoreReason]int{
		ScoreWon:             30,
		ScoreKillOtherByTrap: 10,
	}
}

// DefaultRankColors is used for rounds that do not configure their own rank colors.
func DefaultRankColors() map[ScoreReason]Color {
	return map[ScoreReason]Color{
		ScoreWon:             "#00ff00",
		ScoreKillOtherByTrap: "#ffff00",
	}
}

// GridSize is the size of the placement grid in cells.
type GridSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the cell (x, y) lies inside the grid.
func (g GridSize) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Rect is a rectangular grid area.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PlayerSetting describes a participating player.
type PlayerSetting struct {
	ID       int                  `json:"id"`
	Name     string               `json:"name"`
	Color    Color                `json:"color"`
	SpriteID int                  `json:"sprite_id"`
	Actions  map[PlayerAction]Key `json:"actions"`
}

// KeyFor returns the key bound to action.
func (p *PlayerSetting) KeyFor(action PlayerAction) (Key, bool) {
	k, ok := p.Actions[action]
	return k, ok && k != ""
}

// Bound reports whether every action of ActionSequence has a key.
func (p *PlayerSetting) Bound() bool {
	for _, a := range ActionSequence {
		if _, ok := p.KeyFor(a); !ok {
			return false
		}
	}
	return true
}

// RoundSetting describes one round of a map.
type RoundSetting struct {
	Name          string                `json:"name"`
	Points        int                   `json:"points"`
	TimeLimit     time.Duration         `json:"time_limit"`
	SpawnArea     Rect                  `json:"spawn_area"`
	UsableObjects []ObjectRef           `json:"usable_objects"`
	PointsMap     map[ScoreReason]int   `json:"points_map"`
	RankColorMap  map[ScoreReason]Color `json:"rank_color_map"`
}

// NewScoreChange builds a score change for reason using the round's points and colors.
func (r *RoundSetting) NewScoreChange(reason ScoreReason, cause string) ScoreChange {
	points, colors := r.PointsMap, r.RankColorMap
	if points == nil {
		points = DefaultPointsMap()
	}
	if colors == nil {
		colors = DefaultRankColors()
	}
	return ScoreChange{
		Reason:    reason,
		Delta:     points[reason],
		RankColor: colors[reason],
		Cause:     cause,
	}
}

// MapSetting describes a map and the match played on it.
type MapSetting struct {
	Name          string          `json:"name"`
	Rounds        []RoundSetting  `json:"rounds"`
	Players       []PlayerSetting `json:"players"`
	MinRoundCount int             `json:"min_round_count"`
	PassPoints    int             `json:"pass_points"`
	Grid          GridSize        `json:"grid"`
}

// Validate checks the structural requirements of a match.
func (m *MapSetting) Validate() error {
	if len(m.Rounds) == 0 {
		return fmt.Errorf("%w: map %q has no rounds", ErrInvalidSetting, m.Name)
	}
	if len(m.Players) == 0 {
		return fmt.Errorf("%w: map %q has no players", ErrInvalidSetting, m.Name)
	}
	if m.MinRoundCount < 0 || m.MinRoundCount > len(m.Rounds) {
		return fmt.Errorf("%w: min round count %d outside 0..%d", ErrInvalidSetting, m.MinRoundCount, len(m.Rounds))
	}
	if m.PassPoints < 0 {
		return fmt.Errorf("%w: pass points must not be negative", ErrInvalidSetting)
	}
	seen := make(map[int]bool, len(m.Players))
	for _, p := range m.Players {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player id %d", ErrInvalidSetting, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
