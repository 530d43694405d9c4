package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/aplus/internal/presentation/tui"
	"github.com/aretw0/aplus/pkg/adapters/redis"
	"github.com/aretw0/aplus/pkg/ports"
)

func openRedis(ctx context.Context, addr string) (*redis.Store, error) {
	store := redis.New(addr)
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return store, nil
}

// ShowMatches prints the match with id, or every stored match when id is empty.
func ShowMatches(ctx context.Context, redisAddr, id string, w io.Writer) error {
	store, err := openRedis(ctx, redisAddr)
	if err != nil {
		return err
	}
	defer store.Close()
	return showMatches(ctx, store, id, w)
}

func showMatches(ctx context.Context, store ports.MatchStore, id string, w io.Writer) error {
	if id != "" {
		record, err := store.Load(ctx, id)
		if err != nil {
			return err
		}
		renderer, err := tui.NewRenderer(w)
		if err != nil {
			return err
		}
		out, err := renderer.Render(tui.StandingsMarkdown(record))
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	}

	records, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printSystemMessage(w, "No matches stored.")
		return nil
	}
	for _, r := range records {
		winner := "-"
		if ws := r.Winners(); len(ws) > 0 {
			winner = ws[0].Name
			if len(ws) > 1 {
				winner += fmt.Sprintf(" (+%d)", len(ws)-1)
			}
		}
		fmt.Fprintf(w, "%s  %s  %-12s rounds=%d winner=%s\n",
			r.ID, r.FinishedAt.Format("2006-01-02 15:04"), r.Map, r.RoundsPlayed, winner)
	}
	return nil
}
