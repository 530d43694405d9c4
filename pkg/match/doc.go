/*
Package match implements the round progression of a match.

The Controller is the root scene state of a match. Each time it regains focus it looks at
the state that was just popped above it and decides what comes next:

	selection -> placement -> playing -> ranking -> (next round | result) -> done

Child states share the match statistics (*domain.MapStat) handed to them as their
argument. Only Playing appends health and score changes.
*/
package match
