package domain

import "fmt"

// StatePhase is the coarse lifecycle position of a scene state.
type StatePhase int

const (
	PhaseInitialized StatePhase = iota
	PhaseLoaded
	PhaseVisible
	PhaseFocused
)

func (p StatePhase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseLoaded:
		return "loaded"
	case PhaseVisible:
		return "visible"
	case PhaseFocused:
		return "focused"
	}
	return fmt.Sprintf("StatePhase(%d)", int(p))
}

// AtLeast reports whether p is min or further along the lifecycle.
func (p StatePhase) AtLeast(min StatePhase) bool {
	return p >= min
}

// ObserverPhase is the fine-grained position an observer has been notified up to.
// Backward micro-steps are mirrored onto the same ordinal scale, see Step.ObserverTarget.
type ObserverPhase int

const (
	ObserverInitialized ObserverPhase = iota
	ObserverPreLoad
	ObserverLoad
	ObserverPostLoad
	ObserverPreMakeVisible
	ObserverMakeVisible
	ObserverPostMakeVisible
	ObserverPreFocus
	ObserverFocus
	ObserverPostFocus
)

var observerPhaseNames = [...]string{
	"initialized", "pre_load", "load", "post_load",
	"pre_make_visible", "make_visible", "post_make_visible",
	"pre_focus", "focus", "post_focus",
}

func (p ObserverPhase) String() string {
	if p >= 0 && int(p) < len(observerPhaseNames) {
		return observerPhaseNames[p]
	}
	return fmt.Sprintf("ObserverPhase(%d)", int(p))
}

// Step returns the forward micro-step that delivers this phase to an observer.
// ObserverInitialized has no forward step and returns StepNone.
func (p ObserverPhase) Step() Step {
	if p <= ObserverInitialized || p > ObserverPostFocus {
		return StepNone
	}
	return Step(p)
}

// Step is one of the 18 lifecycle micro-steps.
type Step int

const (
	StepNone Step = iota
	StepPreLoad
	StepLoad
	StepPostLoad
	StepPreMakeVisible
	StepMakeVisible
	StepPostMakeVisible
	StepPreFocus
	StepFocus
	StepPostFocus
	StepPreBlur
	StepBlur
	StepPostBlur
	StepPreMakeInvisible
	StepMakeInvisible
	StepPostMakeInvisible
	StepPreUnload
	StepUnload
	StepPostUnload
)

var stepNames = [...]string{
	"none",
	"pre_load", "load", "post_load",
	"pre_make_visible", "make_visible", "post_make_visible",
	"pre_focus", "focus", "post_focus",
	"pre_blur", "blur", "post_blur",
	"pre_make_invisible", "make_invisible", "post_make_invisible",
	"pre_unload", "unload", "post_unload",
}

func (s Step) String() string {
	if s >= 0 && int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Forward reports whether s moves a state toward Focused.
func (s Step) Forward() bool {
	return s >= StepPreLoad && s <= StepPostFocus
}

// Ordinal is the position of s on the lifecycle line checked by the order checker:
// forward steps count 1..9 and backward steps count back down 8..0.
// A step is in order when its ordinal differs by exactly one from the previous step.
func (s Step) Ordinal() int {
	switch {
	case s.Forward():
		return int(s)
	case s >= StepPreBlur && s <= StepPostUnload:
		return int(StepPostFocus) - (int(s) - int(StepPostFocus))
	}
	return 0
}

// ObserverTarget is the observer phase an observable dispatches to when s runs.
// Backward steps target the phase the state is returning to:
// PreBlur targets Focus, Blur targets PreFocus and so on down to PostUnload,
// which targets Initialized.
func (s Step) ObserverTarget() ObserverPhase {
	switch {
	case s.Forward():
		return ObserverPhase(s)
	case s >= StepPreBlur && s <= StepPostUnload:
		return ObserverPhase(s.Ordinal())
	}
	return ObserverInitialized
}
