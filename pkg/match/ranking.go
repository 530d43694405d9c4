package match

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// BoardRow is one player's line on the ranking board.
type BoardRow struct {
	PlayerID int                  `json:"player_id"`
	Name     string               `json:"name"`
	Color    domain.Color         `json:"color"`
	Won      bool                 `json:"won"`
	Round    int                  `json:"round"`
	Total    int                  `json:"total"`
	Changes  []domain.ScoreChange `json:"changes"`
}

// Board is the ranking of a finished round.
type Board struct {
	Round          int        `json:"round"`
	RoundName      string     `json:"round_name"`
	TooEasyNoPoint bool       `json:"too_easy_no_point"`
	Rows           []BoardRow `json:"rows"`
}

// NewBoard builds the ranking board of the current round of stat, in player order.
func NewBoard(stat *domain.MapStat) Board {
	round := stat.Current()
	if round == nil {
		return Board{Round: stat.CurrentRound}
	}
	b := Board{
		Round:          stat.CurrentRound,
		RoundName:      round.Name,
		TooEasyNoPoint: round.TooEasyNoPoint,
	}
	for j, p := range stat.Players {
		rps := stat.RoundPlayer(stat.CurrentRound, j)
		b.Rows = append(b.Rows, BoardRow{
			PlayerID: p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Won:      rps.Won,
			Round:    rps.Score(),
			Total:    stat.CumulativeScore(j),
			Changes:  slices.Clone(rps.ScoreChanges),
		})
	}
	return b
}

// Ranking shows the scores of the round and waits until every player released action1.
type Ranking struct {
	scene.Observable[*domain.MapStat, struct{}, *Ranking]
	input ports.InputSource

	mu      sync.Mutex
	board   Board
	waiting []int
	popped  bool
}

// NewRanking creates the ranking state.
func NewRanking(input ports.InputSource) *Ranking {
	r := &Ranking{input: input}
	r.Bind(r)
	return r
}

func (r *Ranking) Name() string { return "ranking" }

// PreFocus builds the board before observers are told about the focus.
func (r *Ranking) PreFocus(ctx context.Context, prev scene.Node, result any) error {
	if prev == nil {
		stat := r.Arg()
		r.mu.Lock()
		r.popped = false
		r.board = NewBoard(stat)
		r.waiting = r.waiting[:0]
		for j := range stat.Players {
			r.waiting = append(r.waiting, j)
		}
		r.mu.Unlock()
	}
	return r.Observable.PreFocus(ctx, prev, result)
}

// Board returns the ranking of the round being shown.
func (r *Ranking) Board() Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}

// Waiting returns the order of the players that have not confirmed yet.
func (r *Ranking) Waiting() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.waiting)
}

func (r *Ranking) Update(ctx context.Context) error {
	stat := r.Arg()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.popped {
		return nil
	}
	r.waiting = slices.DeleteFunc(r.waiting, func(j int) bool {
		return released(r.input, stat.Players[j], domain.ActionAction1)
	})
	if len(r.waiting) > 0 {
		return nil
	}
	r.popped = true
	return r.PopState(struct{}{})
}
