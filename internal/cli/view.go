package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/aplus"
	"github.com/aretw0/aplus/internal/presentation/tui"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/registry"
	"github.com/aretw0/aplus/pkg/scene"
)

const viewInterval = 50 * time.Millisecond

// runView redraws the screen from the game's stack until ctx is done.
func runView(ctx context.Context, s *tui.Screen, game *aplus.Game, reg *registry.Registry) {
	ticker := time.NewTicker(viewInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		frames := game.Snapshot()
		s.Draw(tui.StackLine(frames), viewBody(frames, reg), "Esc or Ctrl+C quits")
	}
}

// viewBody describes the focused state.
func viewBody(frames []scene.Frame, reg *registry.Registry) []string {
	if len(frames) == 0 {
		return []string{"Waiting..."}
	}
	switch frames[len(frames)-1].Name {
	case "key_binding":
		return []string{"Press a key for each action in turn:", "up, left, down, right, action1, action2."}
	case "selection":
		return []string{"Left and right move your cursor, action1 takes the object."}
	case "placement":
		lines := []string{"Move your object with the arrows, action1 places it on a free cell."}
		if p, ok := lookup[*match.Placement](reg); ok {
			for _, c := range p.Cursors() {
				lines = append(lines, fmt.Sprintf("  player %d: %s at (%d, %d)", c.Player+1, c.Object, c.X, c.Y))
			}
		}
		return lines
	case "playing":
		return []string{"Round in progress..."}
	case "ranking":
		if r, ok := lookup[*match.Ranking](reg); ok {
			lines := strings.Split(strings.TrimSpace(tui.BoardMarkdown(r.Board())), "\n")
			return append(lines, "", "Press action1 when you are ready.")
		}
	case "result":
		return []string{"Match over! Press action1 to leave."}
	}
	return nil
}

func lookup[S any](reg *registry.Registry) (S, bool) {
	var zero S
	subject, ok := registry.Lookup[S](reg)
	if !ok {
		return zero, false
	}
	s, ok := subject.(S)
	return s, ok
}
