package aplus_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/aplus"
	"github.com/aretw0/aplus/pkg/adapters/scripted"
)

// ExampleGame_Play runs a scripted two-round match without a terminal.
// Every player confirms each prompt with their action1 key and the arena decides who wins.
func ExampleGame_Play() {
	arena := scripted.NewArena([]scripted.Round{
		{Frames: 1, Outcomes: []scripted.Outcome{{PlayerID: 2, Won: true}}},
		{Frames: 1, Outcomes: []scripted.Outcome{{PlayerID: 2, Won: true, WonCause: "goal"}}},
	})

	game := aplus.New(
		aplus.WithInput(autoInput()),
		aplus.WithArena(arena),
		aplus.WithTickInterval(time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record, err := game.Play(ctx, campus())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Rounds played:", record.RoundsPlayed)
	for _, w := range record.Winners() {
		fmt.Printf("%s wins with %d points\n", w.Name, w.Score)
	}

	// Output:
	// Rounds played: 2
	// bo wins with 60 points
}
