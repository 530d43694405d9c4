package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/domain"
)

// Observer receives the lifecycle micro-steps of an observable subject.
// Implementations are used as map keys and must be comparable; use pointers.
type Observer[S any] interface {
	Notify(ctx context.Context, step domain.Step, subject S) error
}

// ObserverHooks is an Observer built from optional callbacks, one per micro-step.
type ObserverHooks[S any] struct {
	OnPreLoad  func(context.Context, S) error
	OnLoad     func(context.Context, S) error
	OnPostLoad func(context.Context, S) error

	OnPreMakeVisible  func(context.Context, S) error
	OnMakeVisible     func(context.Context, S) error
	OnPostMakeVisible func(context.Context, S) error

	OnPreFocus  func(context.Context, S) error
	OnFocus     func(context.Context, S) error
	OnPostFocus func(context.Context, S) error

	OnPreBlur  func(context.Context, S) error
	OnBlur     func(context.Context, S) error
	OnPostBlur func(context.Context, S) error

	OnPreMakeInvisible  func(context.Context, S) error
	OnMakeInvisible     func(context.Context, S) error
	OnPostMakeInvisible func(context.Context, S) error

	OnPreUnload  func(context.Context, S) error
	OnUnload     func(context.Context, S) error
	OnPostUnload func(context.Context, S) error
}

// Notify calls the callback registered for step, if any.
func (h *ObserverHooks[S]) Notify(ctx context.Context, step domain.Step, subject S) error {
	var fn func(context.Context, S) error
	switch step {
	case domain.StepPreLoad:
		fn = h.OnPreLoad
	case domain.StepLoad:
		fn = h.OnLoad
	case domain.StepPostLoad:
		fn = h.OnPostLoad
	case domain.StepPreMakeVisible:
		fn = h.OnPreMakeVisible
	case domain.StepMakeVisible:
		fn = h.OnMakeVisible
	case domain.StepPostMakeVisible:
		fn = h.OnPostMakeVisible
	case domain.StepPreFocus:
		fn = h.OnPreFocus
	case domain.StepFocus:
		fn = h.OnFocus
	case domain.StepPostFocus:
		fn = h.OnPostFocus
	case domain.StepPreBlur:
		fn = h.OnPreBlur
	case domain.StepBlur:
		fn = h.OnBlur
	case domain.StepPostBlur:
		fn = h.OnPostBlur
	case domain.StepPreMakeInvisible:
		fn = h.OnPreMakeInvisible
	case domain.StepMakeInvisible:
		fn = h.OnMakeInvisible
	case domain.StepPostMakeInvisible:
		fn = h.OnPostMakeInvisible
	case domain.StepPreUnload:
		fn = h.OnPreUnload
	case domain.StepUnload:
		fn = h.OnUnload
	case domain.StepPostUnload:
		fn = h.OnPostUnload
	}
	if fn == nil {
		return nil
	}
	return fn(ctx, subject)
}

// Observable is a Base that broadcasts its lifecycle to registered observers.
//
// Embed it in the subject type S and call Bind with the subject before pushing it.
// Each micro-step dispatches to the observers that have not yet seen the target
// observer phase and waits for that dispatch to finish. Observer failures are logged
// and reported through the manager's lifecycle hooks; they never fail the step.
type Observable[A, R, S any] struct {
	Base[A, R]

	omu       sync.Mutex
	subject   S
	observers map[Observer[S]]domain.ObserverPhase
	joining   map[Observer[S]]bool
	issued    domain.ObserverPhase
	applied   domain.ObserverPhase
	target    domain.StatePhase
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	queue     digest
}

// Bind sets the subject handed to observer callbacks.
func (o *Observable[A, R, S]) Bind(subject S) {
	o.omu.Lock()
	defer o.omu.Unlock()
	o.subject = subject
}

// Subject returns the bound subject.
func (o *Observable[A, R, S]) Subject() S {
	o.omu.Lock()
	defer o.omu.Unlock()
	return o.subject
}

// Observe registers obs. If the node is already past Initialized, obs is first walked
// through every micro-step up to the current one. Registering an observer twice is a no-op.
// Observe does not wait; use Sync to wait for the registration to settle.
func (o *Observable[A, R, S]) Observe(obs Observer[S]) {
	o.queue.enqueue(context.Background(), true, func(ctx context.Context) error {
		return o.catchUp(ctx, obs)
	}, o.fail(domain.StepNone))
}

// Unobserve removes obs without delivering any further callbacks.
func (o *Observable[A, R, S]) Unobserve(obs Observer[S]) {
	o.queue.enqueue(context.Background(), false, func(context.Context) error {
		o.omu.Lock()
		delete(o.observers, obs)
		o.omu.Unlock()
		return nil
	}, o.fail(domain.StepNone))
}

// Sync waits until every dispatch and registration issued so far has completed.
// Calling Sync from an observer callback of the same node deadlocks.
func (o *Observable[A, R, S]) Sync(ctx context.Context) error {
	done := o.queue.enqueue(ctx, false, func(context.Context) error { return nil }, nil)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ObserverCount returns the number of registered observers.
func (o *Observable[A, R, S]) ObserverCount() int {
	o.omu.Lock()
	defer o.omu.Unlock()
	return len(o.observers)
}

func (o *Observable[A, R, S]) log() *slog.Logger {
	o.omu.Lock()
	defer o.omu.Unlock()
	if o.logger == nil {
		return logging.NewNop()
	}
	return o.logger
}

// name is the display name of the subject when it is a node.
func (o *Observable[A, R, S]) name() string {
	if n, ok := any(o.Subject()).(Node); ok {
		return NameOf(n)
	}
	return NameOf(o)
}

func (o *Observable[A, R, S]) fail(step domain.Step) func(error) {
	return func(err error) {
		o.log().Error("observer dispatch failed", "state", o.name(), "step", step.String(), "err", err)
	}
}

func (o *Observable[A, R, S]) report(ctx context.Context, step domain.Step, err error) {
	o.omu.Lock()
	hook := o.hooks.OnObserverError
	o.omu.Unlock()
	if hook != nil {
		hook(ctx, &domain.ObserverEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventObserverError},
			State:     o.name(),
			Step:      step,
			Err:       err,
		})
	}
}

func (o *Observable[A, R, S]) notify(ctx context.Context, obs Observer[S], step domain.Step, subject S) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return obs.Notify(ctx, step, subject)
}

func (o *Observable[A, R, S]) catchUp(ctx context.Context, obs Observer[S]) error {
	o.omu.Lock()
	if _, ok := o.observers[obs]; ok || o.joining[obs] {
		o.omu.Unlock()
		return nil
	}
	if o.joining == nil {
		o.joining = make(map[Observer[S]]bool)
	}
	o.joining[obs] = true
	target, statePhase, subject := o.applied, o.target, o.subject
	o.omu.Unlock()

	defer func() {
		o.omu.Lock()
		delete(o.joining, obs)
		o.omu.Unlock()
	}()

	groups := []struct {
		phase domain.StatePhase
		first domain.ObserverPhase
	}{
		{domain.PhaseLoaded, domain.ObserverPreLoad},
		{domain.PhaseVisible, domain.ObserverPreMakeVisible},
		{domain.PhaseFocused, domain.ObserverPreFocus},
	}

	reached := domain.ObserverInitialized
	for _, g := range groups {
		if target < g.first || statePhase < g.phase {
			continue
		}
		for p := g.first; p < g.first+3 && p <= target; p++ {
			if err := o.notify(ctx, obs, p.Step(), subject); err != nil {
				o.report(ctx, p.Step(), err)
				return fmt.Errorf("catch up %s: %w", p.Step(), err)
			}
			reached = p
		}
	}

	o.omu.Lock()
	if o.observers == nil {
		o.observers = make(map[Observer[S]]domain.ObserverPhase)
	}
	o.observers[obs] = reached
	o.omu.Unlock()
	return nil
}

// dispatch delivers step to the observers that have not reached its target phase
// and waits for the delivery to complete.
func (o *Observable[A, R, S]) dispatch(ctx context.Context, step domain.Step) error {
	target := step.ObserverTarget()

	o.omu.Lock()
	if target == o.issued {
		o.omu.Unlock()
		return nil
	}
	o.issued = target
	o.omu.Unlock()

	done := o.queue.enqueue(ctx, false, func(ctx context.Context) error {
		return o.apply(ctx, step, target)
	}, o.fail(step))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Observable[A, R, S]) apply(ctx context.Context, step domain.Step, target domain.ObserverPhase) error {
	o.omu.Lock()
	if target == o.applied {
		o.omu.Unlock()
		return nil
	}
	var pending []Observer[S]
	if target > o.applied {
		switch {
		case target >= domain.ObserverPreFocus:
			o.target = domain.PhaseFocused
		case target >= domain.ObserverPreMakeVisible:
			o.target = domain.PhaseVisible
		case target >= domain.ObserverPreLoad:
			o.target = domain.PhaseLoaded
		}
		for obs, p := range o.observers {
			if p < target {
				pending = append(pending, obs)
			}
		}
	} else {
		switch {
		case target < domain.ObserverPostLoad:
			o.target = domain.PhaseInitialized
		case target < domain.ObserverPostMakeVisible:
			o.target = domain.PhaseLoaded
		case target < domain.ObserverPostFocus:
			o.target = domain.PhaseVisible
		}
		for obs, p := range o.observers {
			if p > target {
				pending = append(pending, obs)
			}
		}
	}
	o.applied = target
	subject := o.subject
	o.omu.Unlock()

	var g errgroup.Group
	for _, obs := range pending {
		g.Go(func() error {
			if err := o.notify(ctx, obs, step, subject); err != nil {
				o.report(ctx, step, err)
				return err
			}
			o.omu.Lock()
			if _, ok := o.observers[obs]; ok {
				o.observers[obs] = target
			}
			o.omu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (o *Observable[A, R, S]) PreLoad(ctx context.Context, m *Manager, arg any) error {
	if err := o.Base.PreLoad(ctx, m, arg); err != nil {
		return err
	}
	if m != nil {
		o.omu.Lock()
		o.logger, o.hooks = m.logger, m.hooks
		o.omu.Unlock()
	}
	return o.dispatch(ctx, domain.StepPreLoad)
}

func (o *Observable[A, R, S]) Load(ctx context.Context, m *Manager, arg any) error {
	if err := o.Base.Load(ctx, m, arg); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepLoad)
}

func (o *Observable[A, R, S]) PostLoad(ctx context.Context, m *Manager, arg any) error {
	if err := o.Base.PostLoad(ctx, m, arg); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostLoad)
}

func (o *Observable[A, R, S]) PreMakeVisible(ctx context.Context, prev Node, result any) error {
	if err := o.Base.PreMakeVisible(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPreMakeVisible)
}

func (o *Observable[A, R, S]) MakeVisible(ctx context.Context, prev Node, result any) error {
	if err := o.Base.MakeVisible(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepMakeVisible)
}

func (o *Observable[A, R, S]) PostMakeVisible(ctx context.Context, prev Node, result any) error {
	if err := o.Base.PostMakeVisible(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostMakeVisible)
}

func (o *Observable[A, R, S]) PreFocus(ctx context.Context, prev Node, result any) error {
	if err := o.Base.PreFocus(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPreFocus)
}

func (o *Observable[A, R, S]) Focus(ctx context.Context, prev Node, result any) error {
	if err := o.Base.Focus(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepFocus)
}

func (o *Observable[A, R, S]) PostFocus(ctx context.Context, prev Node, result any) error {
	if err := o.Base.PostFocus(ctx, prev, result); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostFocus)
}

func (o *Observable[A, R, S]) PreBlur(ctx context.Context) error {
	if err := o.Base.PreBlur(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPreBlur)
}

func (o *Observable[A, R, S]) Blur(ctx context.Context) error {
	if err := o.Base.Blur(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepBlur)
}

func (o *Observable[A, R, S]) PostBlur(ctx context.Context) error {
	if err := o.Base.PostBlur(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostBlur)
}

func (o *Observable[A, R, S]) PreMakeInvisible(ctx context.Context) error {
	if err := o.Base.PreMakeInvisible(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPreMakeInvisible)
}

func (o *Observable[A, R, S]) MakeInvisible(ctx context.Context) error {
	if err := o.Base.MakeInvisible(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepMakeInvisible)
}

func (o *Observable[A, R, S]) PostMakeInvisible(ctx context.Context) error {
	if err := o.Base.PostMakeInvisible(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostMakeInvisible)
}

func (o *Observable[A, R, S]) PreUnload(ctx context.Context) error {
	if err := o.Base.PreUnload(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPreUnload)
}

func (o *Observable[A, R, S]) Unload(ctx context.Context) error {
	if err := o.Base.Unload(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepUnload)
}

func (o *Observable[A, R, S]) PostUnload(ctx context.Context) error {
	if err := o.Base.PostUnload(ctx); err != nil {
		return err
	}
	return o.dispatch(ctx, domain.StepPostUnload)
}
