package scripted

import (
	"slices"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
)

// Frame is the key state of one scripted frame.
type Frame struct {
	Released []domain.Key `json:"released" yaml:"released"`
	Pressed  domain.Key   `json:"pressed" yaml:"pressed"`
}

// Input implements ports.InputSource by replaying frames.
// Once the frames run out, the auto-release keys are released on every frame.
// Safe for concurrent use.
type Input struct {
	mu      sync.Mutex
	frames  []Frame
	next    int
	auto    []domain.Key
	current Frame
}

// InputOption configures an Input.
type InputOption func(*Input)

// WithAutoRelease releases keys on every frame after the script is exhausted.
func WithAutoRelease(keys ...domain.Key) InputOption {
	return func(in *Input) {
		in.auto = append(in.auto, keys...)
	}
}

// NewInput creates an input replaying frames.
func NewInput(frames []Frame, opts ...InputOption) *Input {
	in := &Input{frames: slices.Clone(frames)}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Feed appends frames to the script.
func (in *Input) Feed(frames ...Frame) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.frames = append(in.frames, frames...)
}

// Exhausted reports whether every scripted frame was replayed.
func (in *Input) Exhausted() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.next >= len(in.frames)
}

func (in *Input) NextFrame() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.next < len(in.frames) {
		in.current = in.frames[in.next]
		in.next++
		return
	}
	in.current = Frame{Released: in.auto}
}

func (in *Input) KeyUp(key domain.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Contains(in.current.Released, key)
}

func (in *Input) Pressed() (domain.Key, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current.Pressed, in.current.Pressed != ""
}
