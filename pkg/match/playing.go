package match

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// Playing runs the arena for the current round and resolves the scores when it ends.
// It is the only state that appends health and score changes.
type Playing struct {
	scene.Base[*domain.MapStat, struct{}]
	arena  ports.Arena
	popped atomic.Bool
}

// NewPlaying creates the playing state backed by arena.
func NewPlaying(arena ports.Arena) *Playing {
	return &Playing{arena: arena}
}

func (p *Playing) Name() string { return "playing" }

func (p *Playing) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := p.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	if prev != nil {
		return nil
	}
	p.popped.Store(false)
	if err := p.arena.Start(ctx, p.Arg()); err != nil {
		return fmt.Errorf("start arena: %w", err)
	}
	if p.arena.Ended() {
		return p.finish()
	}
	return nil
}

func (p *Playing) Update(ctx context.Context) error {
	if p.arena.Ended() {
		return p.finish()
	}
	return nil
}

func (p *Playing) finish() error {
	if !p.popped.CompareAndSwap(false, true) {
		return nil
	}
	return p.PopState(struct{}{})
}

func (p *Playing) Blur(ctx context.Context) error {
	if err := p.Base.Blur(ctx); err != nil {
		return err
	}
	ResolveRound(p.Arg(), p.arena.Results(), p.Logger())
	if err := p.arena.Stop(ctx); err != nil {
		return fmt.Errorf("stop arena: %w", err)
	}
	return nil
}
