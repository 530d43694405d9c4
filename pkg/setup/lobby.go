package setup

import (
	"context"
	"fmt"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// Roster is the set of players being prepared for a match.
type Roster struct {
	Players  []*domain.PlayerSetting
	Bindings *Bindings
}

// NewRoster creates a roster over players and registers the keys they already bound.
func NewRoster(players []domain.PlayerSetting) (*Roster, error) {
	r := &Roster{Bindings: NewBindings()}
	for i := range players {
		r.Players = append(r.Players, &players[i])
	}
	if err := r.Bindings.Load(r.Players); err != nil {
		return nil, fmt.Errorf("load key bindings: %w", err)
	}
	return r, nil
}

// Ready reports whether every player has a key for every action.
func (r *Roster) Ready() bool {
	for _, p := range r.Players {
		if !p.Bound() {
			return false
		}
	}
	return true
}

// Settings returns a copy of the players' settings.
func (r *Roster) Settings() []domain.PlayerSetting {
	out := make([]domain.PlayerSetting, len(r.Players))
	for i, p := range r.Players {
		out[i] = *p
	}
	return out
}

// Lobby is the root state of the setup stack. It asks every player without a complete
// key map to bind their keys, one player at a time, then pops itself.
type Lobby struct {
	scene.Base[*Roster, struct{}]
	binding *KeyBinding
	asked   map[int]bool
}

// NewLobby creates the lobby reading keys from input.
func NewLobby(input ports.InputSource) *Lobby {
	return &Lobby{binding: NewKeyBinding(input)}
}

func (l *Lobby) Name() string { return "lobby" }

// KeyBinding returns the key binding state the lobby pushes.
func (l *Lobby) KeyBinding() *KeyBinding { return l.binding }

func (l *Lobby) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := l.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	roster := l.Arg()
	if prev == nil {
		l.asked = make(map[int]bool)
	}
	if res, ok := result.(BindingResult); ok {
		l.Logger().Info("key binding finished", "player", res.Player.Name, "completed", res.Completed)
	}

	for _, p := range roster.Players {
		if p.Bound() || l.asked[p.ID] {
			continue
		}
		l.asked[p.ID] = true
		return l.PushState(l.binding, BindingRequest{Bindings: roster.Bindings, Player: p})
	}
	return l.PopState(struct{}{})
}
