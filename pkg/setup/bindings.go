package setup

import (
	"fmt"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
)

type owner struct {
	player int
	action domain.PlayerAction
}

// Bindings maps keys to the single player action they trigger.
// It keeps the action maps of the players it manages in sync.
// Safe for concurrent use.
type Bindings struct {
	mu      sync.RWMutex
	keys    map[domain.Key]owner
	players map[int]*domain.PlayerSetting
}

// NewBindings creates an empty key registry.
func NewBindings() *Bindings {
	return &Bindings{
		keys:    make(map[domain.Key]owner),
		players: make(map[int]*domain.PlayerSetting),
	}
}

// Load registers the keys already bound by players.
// It fails with domain.ErrKeyTaken on the first key bound twice.
func (b *Bindings) Load(players []*domain.PlayerSetting) error {
	for _, p := range players {
		b.mu.Lock()
		b.players[p.ID] = p
		b.mu.Unlock()
		for _, a := range domain.ActionSequence {
			key, ok := p.KeyFor(a)
			if !ok {
				continue
			}
			if err := b.Bind(p, a, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bind binds key to action for player, replacing the key previously bound to that action.
func (b *Bindings) Bind(player *domain.PlayerSetting, action domain.PlayerAction, key domain.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o, ok := b.keys[key]; ok {
		if o.player == player.ID && o.action == action {
			return nil
		}
		if o.player == player.ID {
			return fmt.Errorf("%w: %q is used for %s", domain.ErrKeyTaken, key, o.action)
		}
		return fmt.Errorf("%w: %q is used by player %d", domain.ErrKeyTaken, key, o.player)
	}

	b.players[player.ID] = player
	if player.Actions == nil {
		player.Actions = make(map[domain.PlayerAction]domain.Key)
	}
	if old, ok := player.KeyFor(action); ok {
		delete(b.keys, old)
	}
	player.Actions[action] = key
	b.keys[key] = owner{player: player.ID, action: action}
	return nil
}

// Unbind removes the key bound to action for player.
func (b *Bindings) Unbind(player *domain.PlayerSetting, action domain.PlayerAction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbind(player, action)
}

func (b *Bindings) unbind(player *domain.PlayerSetting, action domain.PlayerAction) {
	key, ok := player.KeyFor(action)
	if !ok {
		return
	}
	if o, ok := b.keys[key]; ok && o.player == player.ID {
		delete(b.keys, key)
	}
	delete(player.Actions, action)
}

// UnbindAll removes every key of player.
func (b *Bindings) UnbindAll(player *domain.PlayerSetting) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for action := range player.Actions {
		b.unbind(player, action)
	}
}

// Owner returns the player and action key is bound to.
func (b *Bindings) Owner(key domain.Key) (playerID int, action domain.PlayerAction, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.keys[key]
	return o.player, o.action, ok
}

// Len returns the number of bound keys.
func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keys)
}
