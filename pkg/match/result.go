package match

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// Result shows the overall winners. Any player releasing action1 closes it.
type Result struct {
	scene.Base[*domain.MapStat, struct{}]
	input  ports.InputSource
	popped atomic.Bool
}

// NewResult creates the result state.
func NewResult(input ports.InputSource) *Result {
	return &Result{input: input}
}

func (r *Result) Name() string { return "result" }

func (r *Result) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := r.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	if prev == nil {
		r.popped.Store(false)
		for _, w := range r.Winners() {
			r.Logger().Info("overall winner", "player", w.Name)
		}
	}
	return nil
}

// Winners returns the players flagged as overall winners.
func (r *Result) Winners() []*domain.PlayerStat {
	stat := r.Arg()
	if stat == nil {
		return nil
	}
	var out []*domain.PlayerStat
	for _, p := range stat.Players {
		if p.WonOverall {
			out = append(out, p)
		}
	}
	return out
}

func (r *Result) Update(ctx context.Context) error {
	for _, p := range r.Arg().Players {
		if released(r.input, p, domain.ActionAction1) {
			if !r.popped.CompareAndSwap(false, true) {
				return nil
			}
			return r.PopState(struct{}{})
		}
	}
	return nil
}
