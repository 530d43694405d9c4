package ports

import "github.com/aretw0/aplus/pkg/domain"

// InputSource exposes the key state of the current frame.
// States poll it from their Update; NextFrame is called by the driver before each tick.
type InputSource interface {
	// NextFrame advances to the next frame, discarding the key state of the previous one.
	NextFrame()

	// KeyUp reports whether key was released during the current frame.
	KeyUp(key domain.Key) bool

	// Pressed returns the first key pressed during the current frame.
	Pressed() (domain.Key, bool)
}
