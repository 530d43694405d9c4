package match

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// KeyCursor is a player's cursor over the objects left to pick.
type KeyCursor struct {
	Player int
	Index  int
}

// Selection lets every player pick one of the round's usable objects.
// Left and right move a player's cursor; action1 takes the object under it.
type Selection struct {
	scene.Base[*domain.MapStat, struct{}]
	input ports.InputSource

	mu        sync.Mutex
	remaining []domain.ObjectRef
	cursors   []*KeyCursor
	popped    bool
}

// NewSelection creates the object selection state.
func NewSelection(input ports.InputSource) *Selection {
	return &Selection{input: input}
}

func (s *Selection) Name() string { return "selection" }

func (s *Selection) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := s.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	if prev != nil {
		return nil
	}
	stat := s.Arg()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.popped = false
	s.remaining = slices.Clone(stat.Current().UsableObjects)
	s.cursors = s.cursors[:0]
	for j, p := range stat.Players {
		if _, ok := p.KeyFor(domain.ActionAction1); !ok {
			s.Logger().Warn("player cannot select without an action1 key", "player", p.Name)
			continue
		}
		s.cursors = append(s.cursors, &KeyCursor{Player: j})
	}
	return s.finishIfDone()
}

// Remaining returns the objects nobody picked yet.
func (s *Selection) Remaining() []domain.ObjectRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.remaining)
}

// Cursors returns a copy of the cursors of the players still picking.
func (s *Selection) Cursors() []KeyCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]KeyCursor, len(s.cursors))
	for i, c := range s.cursors {
		out[i] = *c
	}
	return out
}

func (s *Selection) Update(ctx context.Context) error {
	stat := s.Arg()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.popped {
		return nil
	}
	for i := 0; i < len(s.cursors) && len(s.remaining) > 0; {
		c := s.cursors[i]
		player := stat.Players[c.Player]

		dx, _ := direction(s.input, player)
		c.Index = wrap(c.Index+dx, len(s.remaining))

		if !released(s.input, player, domain.ActionAction1) {
			i++
			continue
		}
		picked := s.remaining[c.Index]
		stat.RoundPlayer(stat.CurrentRound, c.Player).SelectedObject = picked
		s.remaining = slices.Delete(s.remaining, c.Index, c.Index+1)
		s.cursors = slices.Delete(s.cursors, i, i+1)
		s.Logger().Debug("object selected", "player", player.Name, "object", picked)
	}
	for _, c := range s.cursors {
		c.Index = wrap(c.Index, len(s.remaining))
	}
	return s.finishIfDone()
}

// finishIfDone pops once every player picked or nothing is left. Called with s.mu held.
func (s *Selection) finishIfDone() error {
	if s.popped || (len(s.cursors) > 0 && len(s.remaining) > 0) {
		return nil
	}
	s.popped = true
	return s.PopState(struct{}{})
}

func (s *Selection) Blur(ctx context.Context) error {
	if err := s.Base.Blur(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.remaining = nil
	s.cursors = nil
	s.mu.Unlock()
	return nil
}

// wrap keeps i within [0, n), cycling at both ends.
func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
