package setup

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/scene"
)

// BindingRequest is the argument of the KeyBinding state.
type BindingRequest struct {
	Bindings *Bindings
	Player   *domain.PlayerSetting
}

// BindingResult is what the KeyBinding state hands back when popped.
type BindingResult struct {
	Player    *domain.PlayerSetting
	Completed bool
}

// KeyBinding asks a player for one key per action of domain.ActionSequence.
type KeyBinding struct {
	scene.Base[BindingRequest, BindingResult]
	input ports.InputSource

	mu       sync.Mutex
	original map[domain.PlayerAction]domain.Key
	next     int
	prompt   string
	done     bool
}

// NewKeyBinding creates the key binding state reading keys from input.
func NewKeyBinding(input ports.InputSource) *KeyBinding {
	return &KeyBinding{input: input}
}

func (k *KeyBinding) Name() string { return "key_binding" }

func (k *KeyBinding) Focus(ctx context.Context, prev scene.Node, result any) error {
	if err := k.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	req := k.Arg()
	if req.Bindings == nil || req.Player == nil {
		return fmt.Errorf("key binding without player: %w", domain.ErrInvalidOperation)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.original = maps.Clone(req.Player.Actions)
	k.next = 0
	k.done = false
	req.Bindings.UnbindAll(req.Player)
	k.prompt = promptFor(domain.ActionSequence[0])
	return nil
}

func promptFor(action domain.PlayerAction) string {
	return fmt.Sprintf("Key for %s", action)
}

// Prompt returns the message to show to the player.
func (k *KeyBinding) Prompt() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.prompt
}

// Action returns the action waiting for a key.
func (k *KeyBinding) Action() (domain.PlayerAction, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.done || k.next >= len(domain.ActionSequence) {
		return "", false
	}
	return domain.ActionSequence[k.next], true
}

func (k *KeyBinding) Update(ctx context.Context) error {
	key, ok := k.input.Pressed()
	if !ok {
		return nil
	}
	req := k.Arg()

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.done {
		return nil
	}
	action := domain.ActionSequence[k.next]
	if err := req.Bindings.Bind(req.Player, action, key); err != nil {
		if !errors.Is(err, domain.ErrKeyTaken) {
			return err
		}
		if owner, _, _ := req.Bindings.Owner(key); owner == req.Player.ID {
			k.prompt = "The key is used for another action!"
		} else {
			k.prompt = "The key is already used by another player!"
		}
		return nil
	}

	k.next++
	if k.next < len(domain.ActionSequence) {
		k.prompt = promptFor(domain.ActionSequence[k.next])
		return nil
	}
	k.done = true
	return k.PopState(BindingResult{Player: req.Player, Completed: true})
}

// Cancel restores the keys the player had before and pops the state.
func (k *KeyBinding) Cancel() error {
	if k.Phase() != domain.PhaseFocused {
		return fmt.Errorf("cancel key binding while %s: %w", k.Phase(), domain.ErrInvalidOperation)
	}
	req := k.Arg()

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.done {
		return nil
	}
	k.done = true
	req.Bindings.UnbindAll(req.Player)
	for _, a := range domain.ActionSequence {
		if key, ok := k.original[a]; ok {
			if err := req.Bindings.Bind(req.Player, a, key); err != nil {
				return err
			}
		}
	}
	return k.PopState(BindingResult{Player: req.Player, Completed: false})
}

func (k *KeyBinding) Blur(ctx context.Context) error {
	if err := k.Base.Blur(ctx); err != nil {
		return err
	}
	k.mu.Lock()
	k.original = nil
	k.mu.Unlock()
	return nil
}
