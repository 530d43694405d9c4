// Package config loads match files.
//
// A match file describes the map, its rounds and players, plus an optional script used
// to drive headless matches. Files are YAML, or JSON when the extension is .json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/aplus/pkg/adapters/scripted"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/setup"
)

// File is the decoded content of a match file.
type File struct {
	Name          string   `mapstructure:"name"`
	MinRoundCount int      `mapstructure:"min_round_count"`
	PassPoints    int      `mapstructure:"pass_points"`
	Grid          Grid     `mapstructure:"grid"`
	Rounds        []Round  `mapstructure:"rounds"`
	Players       []Player `mapstructure:"players"`
	Script        Script   `mapstructure:"script"`
}

type Grid struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Area struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Round struct {
	Name       string                              `mapstructure:"name"`
	Points     int                                 `mapstructure:"points"`
	TimeLimit  time.Duration                       `mapstructure:"time_limit"`
	SpawnArea  Area                                `mapstructure:"spawn_area"`
	Objects    []domain.ObjectRef                  `mapstructure:"objects"`
	PointsMap  map[domain.ScoreReason]int          `mapstructure:"points_map"`
	RankColors map[domain.ScoreReason]domain.Color `mapstructure:"rank_colors"`
}

type Player struct {
	ID     int                                `mapstructure:"id"`
	Name   string                             `mapstructure:"name"`
	Color  domain.Color                       `mapstructure:"color"`
	Sprite int                                `mapstructure:"sprite"`
	Keys   map[domain.PlayerAction]domain.Key `mapstructure:"keys"`
}

// Script drives a headless match.
type Script struct {
	// AutoConfirm releases every player's action1 key on each frame once Frames run out.
	AutoConfirm *bool         `mapstructure:"auto_confirm"`
	Frames      []ScriptFrame `mapstructure:"frames"`
	Rounds      []ScriptRound `mapstructure:"rounds"`
}

type ScriptFrame struct {
	Released []domain.Key `mapstructure:"released"`
	Pressed  domain.Key   `mapstructure:"pressed"`
}

type ScriptRound struct {
	Frames   int             `mapstructure:"frames"`
	Outcomes []ScriptOutcome `mapstructure:"outcomes"`
}

type ScriptOutcome struct {
	Player    int                   `mapstructure:"player"`
	Won       bool                  `mapstructure:"won"`
	WonCause  string                `mapstructure:"won_cause"`
	TrapKills int                   `mapstructure:"trap_kills"`
	Health    []domain.HealthChange `mapstructure:"health"`
}

// Load reads and decodes the match file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return Decode(raw)
}

// Decode converts a generic document into a File. Unknown keys are errors.
func Decode(raw map[string]any) (*File, error) {
	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &f,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			normalise,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSetting, err)
	}
	return &f, nil
}

var (
	keyType   = reflect.TypeFor[domain.Key]()
	colorType = reflect.TypeFor[domain.Color]()
)

// normalise lower-cases key names and colors, adding the leading '#' to colors.
func normalise(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.ToLower(strings.TrimSpace(data.(string)))
	switch to {
	case keyType:
		return s, nil
	case colorType:
		if s != "" && !strings.HasPrefix(s, "#") {
			s = "#" + s
		}
		return s, nil
	}
	return data, nil
}

// Setting converts the file into a map setting.
func (f *File) Setting() *domain.MapSetting {
	s := &domain.MapSetting{
		Name:          f.Name,
		MinRoundCount: f.MinRoundCount,
		PassPoints:    f.PassPoints,
		Grid:          domain.GridSize{Width: f.Grid.Width, Height: f.Grid.Height},
	}
	for _, r := range f.Rounds {
		s.Rounds = append(s.Rounds, domain.RoundSetting{
			Name:          r.Name,
			Points:        r.Points,
			TimeLimit:     r.TimeLimit,
			SpawnArea:     domain.Rect(r.SpawnArea),
			UsableObjects: slices.Clone(r.Objects),
			PointsMap:     r.PointsMap,
			RankColorMap:  r.RankColors,
		})
	}
	for _, p := range f.Players {
		actions := make(map[domain.PlayerAction]domain.Key, len(p.Keys))
		for a, k := range p.Keys {
			actions[a] = k
		}
		s.Players = append(s.Players, domain.PlayerSetting{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color,
			SpriteID: p.Sprite,
			Actions:  actions,
		})
	}
	return s
}

// Validate reports every problem of the file at once.
func (f *File) Validate() error {
	setting := f.Setting()
	errs := []error{setting.Validate()}

	for _, p := range f.Players {
		for a := range p.Keys {
			if !slices.Contains(domain.ActionSequence, a) {
				errs = append(errs, fmt.Errorf("%w: player %d binds unknown action %q", domain.ErrInvalidSetting, p.ID, a))
			}
		}
	}
	if _, err := setup.NewRoster(setting.Players); err != nil {
		errs = append(errs, err)
	}
	for i, r := range f.Rounds {
		if len(r.Objects) > 0 && (f.Grid.Width <= 0 || f.Grid.Height <= 0) {
			errs = append(errs, fmt.Errorf("%w: round %d has objects but the map has no grid", domain.ErrInvalidSetting, i))
		}
		for reason := range r.PointsMap {
			if reason != domain.ScoreWon && reason != domain.ScoreKillOtherByTrap {
				errs = append(errs, fmt.Errorf("%w: round %d scores unknown reason %q", domain.ErrInvalidSetting, i, reason))
			}
		}
	}
	ids := make(map[int]bool, len(f.Players))
	for _, p := range f.Players {
		ids[p.ID] = true
	}
	for _, sr := range f.Script.Rounds {
		for _, o := range sr.Outcomes {
			if !ids[o.Player] {
				errs = append(errs, fmt.Errorf("%w: script outcome for unknown player %d", domain.ErrInvalidSetting, o.Player))
			}
		}
	}
	return errors.Join(errs...)
}

// ScriptInput builds the scripted input of the file for players.
func (f *File) ScriptInput(players []domain.PlayerSetting) *scripted.Input {
	frames := make([]scripted.Frame, len(f.Script.Frames))
	for i, fr := range f.Script.Frames {
		frames[i] = scripted.Frame{Released: slices.Clone(fr.Released), Pressed: fr.Pressed}
	}
	var opts []scripted.InputOption
	if f.Script.AutoConfirm == nil || *f.Script.AutoConfirm {
		for _, p := range players {
			if k, ok := p.KeyFor(domain.ActionAction1); ok {
				opts = append(opts, scripted.WithAutoRelease(k))
			}
		}
	}
	return scripted.NewInput(frames, opts...)
}

// ScriptArena builds the scripted arena of the file.
func (f *File) ScriptArena() *scripted.Arena {
	rounds := make([]scripted.Round, len(f.Script.Rounds))
	for i, r := range f.Script.Rounds {
		rounds[i].Frames = r.Frames
		for _, o := range r.Outcomes {
			rounds[i].Outcomes = append(rounds[i].Outcomes, scripted.Outcome{
				PlayerID:  o.Player,
				Won:       o.Won,
				WonCause:  o.WonCause,
				TrapKills: o.TrapKills,
				Health:    slices.Clone(o.Health),
			})
		}
	}
	return scripted.NewArena(rounds)
}
