// Package terminal drives a match from a terminal keyboard through tcell.
package terminal

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/domain"
)

// Input implements ports.InputSource over a tcell screen.
// Terminals report no key releases, so a key event counts as both pressed and released
// in the frame after it arrives. Safe for concurrent use.
type Input struct {
	screen    tcell.Screen
	logger    *slog.Logger
	interrupt func()

	mu      sync.Mutex
	pending []domain.Key
	current []domain.Key
}

// Option configures an Input.
type Option func(*Input)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Input) {
		in.logger = logger
	}
}

// WithInterrupt registers fn to be called on Ctrl+C or Escape.
func WithInterrupt(fn func()) Option {
	return func(in *Input) {
		in.interrupt = fn
	}
}

// NewInput creates an input reading key events from screen. The screen must be initialised.
func NewInput(screen tcell.Screen, opts ...Option) *Input {
	in := &Input{
		screen: screen,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run collects key events until ctx is done.
func (in *Input) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := in.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			in.handle(ev)
		}
	}
}

func (in *Input) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
			in.logger.Debug("interrupt key", "key", ev.Name())
			if in.interrupt != nil {
				in.interrupt()
			}
			return
		}
		in.Record(KeyName(ev))
	case *tcell.EventResize:
		in.screen.Sync()
	}
}

// Record queues key for the next frame.
func (in *Input) Record(key domain.Key) {
	if key == "" {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = append(in.pending, key)
}

// KeyName returns the name a key event is bound by: the lower-case rune for printable
// keys, the tcell key name otherwise.
func KeyName(ev *tcell.EventKey) domain.Key {
	if ev.Key() == tcell.KeyRune {
		r := unicode.ToLower(ev.Rune())
		if r == ' ' {
			return "space"
		}
		return domain.Key(string(r))
	}
	if name, ok := tcell.KeyNames[ev.Key()]; ok {
		return domain.Key(strings.ToLower(name))
	}
	return domain.Key(strings.ToLower(ev.Name()))
}

func (in *Input) NextFrame() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.current, in.pending = in.pending, in.current[:0]
}

func (in *Input) KeyUp(key domain.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Contains(in.current, key)
}

func (in *Input) Pressed() (domain.Key, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.current) == 0 {
		return "", false
	}
	return in.current[0], true
}
