package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/aplus/internal/config"
)

// Validate checks the match file at path and prints a summary of it to w.
func Validate(path string, w io.Writer) error {
	file, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	s := file.Setting()
	fmt.Fprintf(w, "Map %q: %d rounds, %d players, grid %dx%d\n", s.Name, len(s.Rounds), len(s.Players), s.Grid.Width, s.Grid.Height)
	return nil
}
