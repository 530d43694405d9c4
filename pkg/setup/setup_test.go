package setup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aplus/pkg/adapters/scripted"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/scene"
	"github.com/aretw0/aplus/pkg/setup"
)

func press(keys ...domain.Key) []scripted.Frame {
	frames := make([]scripted.Frame, len(keys))
	for i, k := range keys {
		frames[i] = scripted.Frame{Pressed: k}
	}
	return frames
}

func TestBindings_Conflicts(t *testing.T) {
	b := setup.NewBindings()
	ann := &domain.PlayerSetting{ID: 1, Name: "ann"}
	bo := &domain.PlayerSetting{ID: 2, Name: "bo"}

	require.NoError(t, b.Bind(ann, domain.ActionUp, "w"))
	require.NoError(t, b.Bind(ann, domain.ActionUp, "w"), "rebinding the same key is a no-op")

	err := b.Bind(ann, domain.ActionLeft, "w")
	assert.ErrorIs(t, err, domain.ErrKeyTaken)
	assert.Contains(t, err.Error(), "used for up")

	err = b.Bind(bo, domain.ActionUp, "w")
	assert.ErrorIs(t, err, domain.ErrKeyTaken)
	assert.Contains(t, err.Error(), "player 1")

	require.NoError(t, b.Bind(ann, domain.ActionUp, "i"))
	_, _, ok := b.Owner("w")
	assert.False(t, ok, "the replaced key is released")
	id, action, ok := b.Owner("i")
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, domain.ActionUp, action)

	require.NoError(t, b.Bind(bo, domain.ActionUp, "w"))
	b.Unbind(bo, domain.ActionUp)
	_, ok = bo.KeyFor(domain.ActionUp)
	assert.False(t, ok)

	b.UnbindAll(ann)
	assert.Zero(t, b.Len())
	assert.Empty(t, ann.Actions)
}

func TestNewRoster_RejectsSharedKeys(t *testing.T) {
	_, err := setup.NewRoster([]domain.PlayerSetting{
		{ID: 1, Actions: map[domain.PlayerAction]domain.Key{domain.ActionUp: "w"}},
		{ID: 2, Actions: map[domain.PlayerAction]domain.Key{domain.ActionDown: "w"}},
	})
	assert.ErrorIs(t, err, domain.ErrKeyTaken)
}

func TestLobby_BindsPlayersWithoutKeys(t *testing.T) {
	ctx := context.Background()
	complete := domain.PlayerSetting{ID: 1, Name: "ann", Actions: map[domain.PlayerAction]domain.Key{
		domain.ActionUp: "w", domain.ActionLeft: "a", domain.ActionDown: "s",
		domain.ActionRight: "d", domain.ActionAction1: "q", domain.ActionAction2: "e",
	}}
	roster, err := setup.NewRoster([]domain.PlayerSetting{complete, {ID: 2, Name: "bo"}})
	require.NoError(t, err)

	in := scripted.NewInput(press("i", "w", "j", "i", "k", "l", "u", "o"))
	lobby := setup.NewLobby(in)
	m := scene.NewManager()

	require.NoError(t, scene.Push[*setup.Roster, struct{}](m, lobby, roster))
	require.NoError(t, m.Settle(ctx))
	assert.Same(t, lobby.KeyBinding(), m.Top())
	assert.Equal(t, "Key for up", lobby.KeyBinding().Prompt())

	in.NextFrame() // i: up
	m.Update(ctx)
	in.NextFrame() // w: taken by ann
	m.Update(ctx)
	assert.Equal(t, "The key is already used by another player!", lobby.KeyBinding().Prompt())
	in.NextFrame() // j: left
	m.Update(ctx)
	in.NextFrame() // i: already up
	m.Update(ctx)
	assert.Equal(t, "The key is used for another action!", lobby.KeyBinding().Prompt())
	action, ok := lobby.KeyBinding().Action()
	require.True(t, ok)
	assert.Equal(t, domain.ActionDown, action)

	for range 4 {
		in.NextFrame()
		m.Update(ctx)
	}
	require.NoError(t, m.Settle(ctx))
	assert.Zero(t, m.Depth())

	bo := roster.Players[1]
	assert.True(t, bo.Bound())
	assert.Equal(t, map[domain.PlayerAction]domain.Key{
		domain.ActionUp: "i", domain.ActionLeft: "j", domain.ActionDown: "k",
		domain.ActionRight: "l", domain.ActionAction1: "u", domain.ActionAction2: "o",
	}, bo.Actions)
	assert.Equal(t, "w", string(roster.Settings()[0].Actions[domain.ActionUp]))
}

func TestKeyBinding_CancelRestoresOriginalKeys(t *testing.T) {
	ctx := context.Background()
	roster, err := setup.NewRoster([]domain.PlayerSetting{
		{ID: 1, Name: "ann", Actions: map[domain.PlayerAction]domain.Key{domain.ActionUp: "w"}},
	})
	require.NoError(t, err)

	in := scripted.NewInput(press("x"))
	lobby := setup.NewLobby(in)
	m := scene.NewManager()
	kb := lobby.KeyBinding()

	assert.ErrorIs(t, kb.Cancel(), domain.ErrInvalidOperation, "not focused yet")

	require.NoError(t, scene.Push[*setup.Roster, struct{}](m, lobby, roster))
	require.NoError(t, m.Settle(ctx))
	require.Same(t, kb, m.Top())
	_, ok := roster.Players[0].KeyFor(domain.ActionUp)
	assert.False(t, ok, "keys are cleared while binding")

	in.NextFrame()
	m.Update(ctx)
	key, _ := roster.Players[0].KeyFor(domain.ActionUp)
	assert.Equal(t, domain.Key("x"), key)

	require.NoError(t, kb.Cancel())
	require.NoError(t, m.Settle(ctx))

	assert.Zero(t, m.Depth(), "a cancelled player is not asked again")
	key, _ = roster.Players[0].KeyFor(domain.ActionUp)
	assert.Equal(t, domain.Key("w"), key)
	_, ok = roster.Players[0].KeyFor(domain.ActionLeft)
	assert.False(t, ok)
	id, _, ok := roster.Bindings.Owner("w")
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	_, _, ok = roster.Bindings.Owner("x")
	assert.False(t, ok)
}

func TestRoster_Ready(t *testing.T) {
	roster, err := setup.NewRoster([]domain.PlayerSetting{{ID: 1, Actions: map[domain.PlayerAction]domain.Key{
		domain.ActionUp: "w", domain.ActionLeft: "a", domain.ActionDown: "s",
		domain.ActionRight: "d", domain.ActionAction1: "q", domain.ActionAction2: "e",
	}}})
	require.NoError(t, err)
	assert.True(t, roster.Ready())

	roster.Bindings.Unbind(roster.Players[0], domain.ActionAction2)
	assert.False(t, roster.Ready())
}
