// Package tui renders match state for terminals.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/scene"
)

// BoardMarkdown renders the ranking of a round as a table.
func BoardMarkdown(b match.Board) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Round %d: %s\n\n", b.Round+1, b.RoundName)
	if b.TooEasyNoPoint {
		sb.WriteString("> Too easy! Nobody scores for reaching the goal.\n\n")
	}
	sb.WriteString("| Player | Won | Round | Total | Changes |\n")
	sb.WriteString("|---|---|---:|---:|---|\n")
	for _, row := range b.Rows {
		won := ""
		if row.Won {
			won = "yes"
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %d | %s |\n", row.Name, won, row.Round, row.Total, changes(row.Changes))
	}
	return sb.String()
}

func changes(cs []domain.ScoreChange) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		p := fmt.Sprintf("%s %+d", c.Reason, c.Delta)
		if c.Cause != "" {
			p += " (" + c.Cause + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

// StandingsMarkdown renders the final standings of a match.
func StandingsMarkdown(rec *domain.MatchRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", rec.Map)
	fmt.Fprintf(&sb, "Rounds played: **%d**\n\n", rec.RoundsPlayed)
	sb.WriteString("| # | Player | Score |\n")
	sb.WriteString("|---:|---|---:|\n")
	for i, s := range rec.Standings {
		name := s.Name
		if s.WonOverall {
			name = "**" + name + "** 🏆"
		}
		fmt.Fprintf(&sb, "| %d | %s | %d |\n", i+1, name, s.Score)
	}
	return sb.String()
}

// StackLine renders the state stack bottom to top, e.g. "controller > ranking".
func StackLine(frames []scene.Frame) string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Name
	}
	return strings.Join(names, " > ")
}
