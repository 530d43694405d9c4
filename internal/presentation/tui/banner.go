package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the title banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"     _        _             ___       _ _ ", "#34d399"},
		{"    /_\\  _ _ (_)  ___ _ _  | __|_ _ (_) |", "#22d3ee"},
		{"   / _ \\| ' \\| | / _ \\ '_| | _/ _` || | |", "#60a5fa"},
		{"  /_/ \\_\\_||_|_| \\___/_|   |_|\\__,_||_|_|", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Colorize paints s with a player color when the terminal supports it.
func Colorize(s, color string) string {
	if color == "" {
		return s
	}
	return termenv.String(s).Foreground(termenv.ColorProfile().Color(color)).String()
}
