/*
Package aplus runs "A Plus Or Fail" party matches on top of a stack of scene states.

Every screen of the game is a scene state (see package scene). States are pushed,
replaced and popped on a Manager, which walks them through a fixed lifecycle of
load, visible, focus, blur, invisible and unload steps. Observable states let other
components watch those steps without being part of the stack.

A match is driven by the round controller (see package match). For each round it
pushes object selection, placement, the playing phase and the ranking board, then
shows the result once the rounds run out or a player passes the score threshold.

# Usage

	in := scripted.NewInput(nil, scripted.WithAutoRelease("q", "enter"))
	game := aplus.New(
		aplus.WithInput(in),
		aplus.WithArena(scripted.NewArena(rounds)),
		aplus.WithLogger(logging.New(slog.LevelInfo)),
	)

	record, err := game.Play(ctx, setting)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range record.Standings {
		fmt.Println(s.Name, s.Score)
	}

Observers can follow a match through the game's registry, even before Play starts it:

	registry.Observe[*match.Ranking](game.Registry(), &scene.ObserverHooks[*match.Ranking]{
		OnFocus: func(ctx context.Context, r *match.Ranking) error {
			fmt.Println(tui.BoardMarkdown(r.Board()))
			return nil
		},
	})
*/
package aplus
