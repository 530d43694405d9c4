package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransitionStart EventType = "transition_start"
	EventTransitionEnd   EventType = "transition_end"
	EventStep            EventType = "step"
	EventObserverError   EventType = "observer_error"
	EventStackEmptied    EventType = "stack_emptied"
)

// TransitionKind names the stack operation being applied.
type TransitionKind string

const (
	TransitionPush    TransitionKind = "push"
	TransitionReplace TransitionKind = "replace"
	TransitionPop     TransitionKind = "pop"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent represents the start or end of a stack transition.
// From is the state that lost focus and To the one that gained it; either may be empty.
type TransitionEvent struct {
	EventBase
	Kind     TransitionKind `json:"kind"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to,omitempty"`
	Depth    int            `json:"depth"`
	Duration time.Duration  `json:"duration,omitempty"`
	Err      error          `json:"-"`
}

// StepEvent represents a single lifecycle micro-step executed on a state.
type StepEvent struct {
	EventBase
	State    string        `json:"state"`
	Step     Step          `json:"step"`
	Phase    StatePhase    `json:"phase"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ObserverEvent represents a failed observer callback.
type ObserverEvent struct {
	EventBase
	State string `json:"state"`
	Step  Step   `json:"step"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for scene manager observability.
// Hooks run synchronously on the transition path and must not block.
type LifecycleHooks struct {
	OnTransitionStart func(context.Context, *TransitionEvent)
	OnTransitionEnd   func(context.Context, *TransitionEvent)
	OnStep            func(context.Context, *StepEvent)
	OnObserverError   func(context.Context, *ObserverEvent)
	OnStackEmptied    func(context.Context, *TransitionEvent)
}

// ChainHooks merges several hook sets into one that calls each in order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnTransitionStart = chain(out.OnTransitionStart, h.OnTransitionStart)
		out.OnTransitionEnd = chain(out.OnTransitionEnd, h.OnTransitionEnd)
		out.OnStep = chain(out.OnStep, h.OnStep)
		out.OnObserverError = chain(out.OnObserverError, h.OnObserverError)
		out.OnStackEmptied = chain(out.OnStackEmptied, h.OnStackEmptied)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
