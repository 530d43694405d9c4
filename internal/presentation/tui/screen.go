package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Screen draws plain text views on a tcell screen.
type Screen struct {
	screen tcell.Screen
	title  tcell.Style
	text   tcell.Style
	dim    tcell.Style
}

// NewScreen wraps an initialised tcell screen.
func NewScreen(s tcell.Screen) *Screen {
	return &Screen{
		screen: s,
		title:  tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
		text:   tcell.StyleDefault.Foreground(tcell.ColorWhite),
		dim:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	}
}

// Draw replaces the screen content: title on the first row, body below, footer on the last row.
// Lines wider than the screen are cut.
func (s *Screen) Draw(title string, body []string, footer string) {
	s.screen.Clear()
	_, height := s.screen.Size()
	s.put(0, title, s.title)
	for i, line := range body {
		if i+2 >= height-1 {
			break
		}
		s.put(i+2, line, s.text)
	}
	if footer != "" && height > 2 {
		s.put(height-1, footer, s.dim)
	}
	s.screen.Show()
}

func (s *Screen) put(y int, line string, style tcell.Style) {
	width, _ := s.screen.Size()
	x := 0
	for _, r := range strings.ReplaceAll(line, "\t", "    ") {
		if x >= width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
