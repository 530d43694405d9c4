package match

import (
	"context"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// ObjectCursor is a player's cursor carrying the object they selected.
type ObjectCursor struct {
	Player int
	Object domain.ObjectRef
	X, Y   int
}

// Placement lets every player holding an object put it on a free grid cell.
type Placement struct {
	scene.Observable[*domain.MapStat, struct{}, *Placement]
	input ports.InputSource

	mu      sync.Mutex
	cursors []*ObjectCursor
	popped  bool
}

// NewPlacement creates the object placement state.
func NewPlacement(input ports.InputSource) *Placement {
	p := &Placement{input: input}
	p.Bind(p)
	return p
}

func (p *Placement) Name() string { return "placement" }

func (p *Placement) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := p.Observable.Focus(ctx, prev, result); err != nil {
		return err
	}
	stat := p.Arg()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.popped = false
	p.cursors = p.cursors[:0]
	for j, player := range stat.Players {
		obj := stat.RoundPlayer(stat.CurrentRound, j).SelectedObject
		if obj == "" {
			continue
		}
		x, y, ok := p.startCell(stat)
		if !ok {
			p.Logger().Warn("no free cell left, object discarded", "player", player.Name, "object", obj)
			continue
		}
		p.cursors = append(p.cursors, &ObjectCursor{Player: j, Object: obj, X: x, Y: y})
	}
	return p.finishIfDone()
}

// startCell returns the first free cell no other cursor starts on. Called with p.mu held.
func (p *Placement) startCell(stat *domain.MapStat) (int, int, bool) {
	for y := 0; y < stat.Grid.Height; y++ {
		for x := 0; x < stat.Grid.Width; x++ {
			if stat.Occupied(x, y) || p.cursorAt(x, y) {
				continue
			}
			return x, y, true
		}
	}
	return 0, 0, false
}

func (p *Placement) cursorAt(x, y int) bool {
	for _, c := range p.cursors {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}

// Cursors returns a copy of the cursors of the players still placing.
func (p *Placement) Cursors() []ObjectCursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ObjectCursor, len(p.cursors))
	for i, c := range p.cursors {
		out[i] = *c
	}
	return out
}

func (p *Placement) Update(ctx context.Context) error {
	stat := p.Arg()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.popped {
		return nil
	}
	for i := 0; i < len(p.cursors); {
		c := p.cursors[i]
		player := stat.Players[c.Player]

		dx, dy := direction(p.input, player)
		if stat.Grid.Contains(c.X+dx, c.Y+dy) {
			c.X, c.Y = c.X+dx, c.Y+dy
		}

		if !released(p.input, player, domain.ActionAction1) || stat.Occupied(c.X, c.Y) {
			i++
			continue
		}
		placed := domain.Placement{
			Object:   c.Object,
			PlayerID: player.ID,
			Round:    stat.CurrentRound,
			X:        c.X,
			Y:        c.Y,
		}
		stat.Placements = append(stat.Placements, placed)
		stat.RoundPlayer(stat.CurrentRound, c.Player).Placement = &placed
		p.cursors = append(p.cursors[:i], p.cursors[i+1:]...)
		p.Logger().Debug("object placed", "player", player.Name, "object", c.Object, "x", c.X, "y", c.Y)
	}
	return p.finishIfDone()
}

// finishIfDone pops once nobody holds an object. Called with p.mu held.
func (p *Placement) finishIfDone() error {
	if p.popped || len(p.cursors) > 0 {
		return nil
	}
	p.popped = true
	return p.PopState(struct{}{})
}

func (p *Placement) Blur(ctx context.Context) error {
	if err := p.Observable.Blur(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.cursors = nil
	p.mu.Unlock()
	return nil
}
