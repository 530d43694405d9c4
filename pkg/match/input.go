package match

import (
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
)

// released reports whether the key bound to action for player was released this frame.
func released(in ports.InputSource, player *domain.PlayerStat, action domain.PlayerAction) bool {
	key, ok := player.KeyFor(action)
	return ok && in.KeyUp(key)
}

// direction returns the horizontal and vertical move requested by player this frame.
// Opposite keys released together cancel out.
func direction(in ports.InputSource, player *domain.PlayerStat) (dx, dy int) {
	if released(in, player, domain.ActionLeft) {
		dx--
	}
	if released(in, player, domain.ActionRight) {
		dx++
	}
	if released(in, player, domain.ActionUp) {
		dy--
	}
	if released(in, player, domain.ActionDown) {
		dy++
	}
	return dx, dy
}
