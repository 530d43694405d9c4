// Package graph draws the transitions of a session as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/observability"
)

// Overlay highlights the live part of the chart.
type Overlay struct {
	// Stack lists the state names from bottom to top.
	Stack []string
}

type edge struct {
	from, to string
	kind     domain.TransitionKind
}

// GenerateMermaid renders entries as a flowchart. Each state appears once; repeated
// transitions between the same states collapse into one edge labelled with a count.
// Failed transitions are drawn dotted.
// Shapes:
// - empty stack: ((Circle))
// - the round controller: [[Subroutine]]
// - everything else: [Rectangle]
func GenerateMermaid(entries []observability.Entry, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	const empty = "empty"
	var states []string
	seen := map[string]bool{}
	addState := func(name string) string {
		if name == "" {
			name = empty
		}
		if !seen[name] {
			seen[name] = true
			states = append(states, name)
		}
		return name
	}

	var edges []edge
	counts := map[edge]int{}
	failed := map[edge]bool{}
	for _, e := range entries {
		k := edge{from: addState(e.From), to: addState(e.To), kind: e.Kind}
		if counts[k] == 0 {
			edges = append(edges, k)
		}
		counts[k]++
		if e.Err != "" {
			failed[k] = true
		}
	}

	for _, name := range states {
		opener, closer := "[", "]"
		switch name {
		case empty:
			opener, closer = "((", "))"
		case "controller":
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
	}

	for _, e := range edges {
		label := string(e.kind)
		if n := counts[e]; n > 1 {
			label = fmt.Sprintf("%s x%d", label, n)
		}
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if failed[e] {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.from), arrow, sanitizeMermaidID(e.to))
	}

	if overlay != nil && len(overlay.Stack) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// color:#000 keeps labels readable on both light and dark themes
		sb.WriteString("    classDef stacked fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef top fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		last := len(overlay.Stack) - 1
		for i, name := range overlay.Stack {
			class := "stacked"
			if i == last {
				class = "top"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(name), class)
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
