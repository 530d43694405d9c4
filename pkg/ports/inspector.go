package ports

import "github.com/aretw0/aplus/pkg/scene"

// SceneInspector exposes the live scene stack for debugging surfaces.
type SceneInspector interface {
	// Snapshot lists the stack from bottom to top.
	Snapshot() []scene.Frame
}
