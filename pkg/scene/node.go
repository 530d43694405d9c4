package scene

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/aplus/pkg/domain"
)

// Node is a scene state driven through its lifecycle by a Manager.
//
// Implementations embed Base (or Observable) and override the micro-steps they care
// about, calling the embedded implementation first. Steps may block; they must return
// when ctx is done. The ctx passed to a step is only valid for the duration of that step.
type Node interface {
	PreLoad(ctx context.Context, m *Manager, arg any) error
	Load(ctx context.Context, m *Manager, arg any) error
	PostLoad(ctx context.Context, m *Manager, arg any) error

	PreMakeVisible(ctx context.Context, prev Node, result any) error
	MakeVisible(ctx context.Context, prev Node, result any) error
	PostMakeVisible(ctx context.Context, prev Node, result any) error

	PreFocus(ctx context.Context, prev Node, result any) error
	Focus(ctx context.Context, prev Node, result any) error
	PostFocus(ctx context.Context, prev Node, result any) error

	PreBlur(ctx context.Context) error
	Blur(ctx context.Context) error
	PostBlur(ctx context.Context) error

	PreMakeInvisible(ctx context.Context) error
	MakeInvisible(ctx context.Context) error
	PostMakeInvisible(ctx context.Context) error

	PreUnload(ctx context.Context) error
	Unload(ctx context.Context) error
	PostUnload(ctx context.Context) error

	// Phase returns the coarse lifecycle phase.
	Phase() domain.StatePhase

	lifecycle() *core
}

// Typed is a Node whose argument and result types are known at compile time.
type Typed[A, R any] interface {
	Node
	typed(A, R)
}

// Updater is implemented by nodes that act once per scheduler tick while focused.
type Updater interface {
	Update(ctx context.Context) error
}

// Named lets a node choose its display name in logs, hooks and snapshots.
type Named interface {
	Name() string
}

// NameOf returns the display name of n.
func NameOf(n Node) string {
	if n == nil {
		return ""
	}
	if named, ok := n.(Named); ok {
		return named.Name()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*")
}

// same reports whether a and b are the same node.
func same(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.lifecycle() == b.lifecycle()
}

// core is the type-independent part of a node: its phase, owning manager and the
// order checker. Its address is the identity of a node.
type core struct {
	mu       sync.RWMutex
	phase    domain.StatePhase
	manager  *Manager
	lastStep int
}

func (l *core) lifecycle() *core { return l }

// Phase returns the coarse lifecycle phase.
func (l *core) Phase() domain.StatePhase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// Manager returns the manager that loaded the node, or nil when unloaded.
func (l *core) Manager() *Manager {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.manager
}

// Logger returns the owning manager's logger.
func (l *core) Logger() *slog.Logger {
	if m := l.Manager(); m != nil {
		return m.logger
	}
	return slog.Default()
}

// enter checks that step follows the previous one on the lifecycle line.
// m is the manager to take the policy from when the node does not have one yet.
func (l *core) enter(m *Manager, step domain.Step) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m == nil {
		m = l.manager
	}
	ord := step.Ordinal()
	if ord == l.lastStep+1 || ord == l.lastStep-1 {
		l.lastStep = ord
		return nil
	}
	if m != nil && m.strict {
		return fmt.Errorf("%w: %s after step %d", domain.ErrStepOrder, step, l.lastStep)
	}
	logger := slog.Default()
	if m != nil {
		logger = m.logger
	}
	logger.Error("unexpected lifecycle step", "step", step.String(), "ordinal", ord, "last", l.lastStep)
	l.lastStep = ord
	return nil
}

func (l *core) set(step domain.Step, phase domain.StatePhase) error {
	if err := l.enter(nil, step); err != nil {
		return err
	}
	l.mu.Lock()
	l.phase = phase
	l.mu.Unlock()
	return nil
}

// Base implements Node for states taking an argument of type A and
// finishing with a result of type R. Embed it and override steps as needed.
type Base[A, R any] struct {
	core
	arg A
}

func (b *Base[A, R]) typed(A, R) {}

// ArgType is the type of argument the node is loaded with.
func (b *Base[A, R]) ArgType() reflect.Type { return reflect.TypeFor[A]() }

// ResultType is the type of result the node hands to its successor.
func (b *Base[A, R]) ResultType() reflect.Type { return reflect.TypeFor[R]() }

// Arg returns the argument the node was loaded with.
func (b *Base[A, R]) Arg() A {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.arg
}

func convertArg[A any](arg any) (A, error) {
	var zero A
	if arg == nil {
		return zero, nil
	}
	a, ok := arg.(A)
	if !ok {
		return zero, fmt.Errorf("%w: want %s, got %T", domain.ErrArgType, reflect.TypeFor[A](), arg)
	}
	return a, nil
}

func (b *Base[A, R]) PreLoad(ctx context.Context, m *Manager, arg any) error {
	a, err := convertArg[A](arg)
	if err != nil {
		return err
	}
	if err := b.enter(m, domain.StepPreLoad); err != nil {
		return err
	}
	b.mu.Lock()
	b.phase = domain.PhaseLoaded
	b.manager = m
	b.arg = a
	b.mu.Unlock()
	return nil
}

func (b *Base[A, R]) Load(ctx context.Context, m *Manager, arg any) error {
	return b.enter(m, domain.StepLoad)
}

func (b *Base[A, R]) PostLoad(ctx context.Context, m *Manager, arg any) error {
	return b.enter(m, domain.StepPostLoad)
}

func (b *Base[A, R]) PreMakeVisible(ctx context.Context, prev Node, result any) error {
	return b.set(domain.StepPreMakeVisible, domain.PhaseVisible)
}

func (b *Base[A, R]) MakeVisible(ctx context.Context, prev Node, result any) error {
	return b.enter(nil, domain.StepMakeVisible)
}

func (b *Base[A, R]) PostMakeVisible(ctx context.Context, prev Node, result any) error {
	return b.enter(nil, domain.StepPostMakeVisible)
}

func (b *Base[A, R]) PreFocus(ctx context.Context, prev Node, result any) error {
	return b.set(domain.StepPreFocus, domain.PhaseFocused)
}

func (b *Base[A, R]) Focus(ctx context.Context, prev Node, result any) error {
	return b.enter(nil, domain.StepFocus)
}

func (b *Base[A, R]) PostFocus(ctx context.Context, prev Node, result any) error {
	return b.enter(nil, domain.StepPostFocus)
}

func (b *Base[A, R]) PreBlur(ctx context.Context) error {
	return b.enter(nil, domain.StepPreBlur)
}

func (b *Base[A, R]) Blur(ctx context.Context) error {
	return b.enter(nil, domain.StepBlur)
}

func (b *Base[A, R]) PostBlur(ctx context.Context) error {
	return b.set(domain.StepPostBlur, domain.PhaseVisible)
}

func (b *Base[A, R]) PreMakeInvisible(ctx context.Context) error {
	return b.enter(nil, domain.StepPreMakeInvisible)
}

func (b *Base[A, R]) MakeInvisible(ctx context.Context) error {
	return b.enter(nil, domain.StepMakeInvisible)
}

func (b *Base[A, R]) PostMakeInvisible(ctx context.Context) error {
	return b.set(domain.StepPostMakeInvisible, domain.PhaseLoaded)
}

func (b *Base[A, R]) PreUnload(ctx context.Context) error {
	return b.enter(nil, domain.StepPreUnload)
}

func (b *Base[A, R]) Unload(ctx context.Context) error {
	return b.enter(nil, domain.StepUnload)
}

// PostUnload returns the node to Initialized and forgets its argument and manager,
// so the same node can be pushed again later.
func (b *Base[A, R]) PostUnload(ctx context.Context) error {
	if err := b.enter(nil, domain.StepPostUnload); err != nil {
		return err
	}
	var zero A
	b.mu.Lock()
	b.phase = domain.PhaseInitialized
	b.manager = nil
	b.arg = zero
	b.mu.Unlock()
	return nil
}

// PushState asks the owning manager to push next on top of this node.
func (b *Base[A, R]) PushState(next Node, arg any) error {
	m := b.Manager()
	if m == nil {
		return domain.ErrNoManager
	}
	return m.Push(next, arg)
}

// ReplaceState asks the owning manager to replace this node with next.
func (b *Base[A, R]) ReplaceState(result R, next Node, arg any) error {
	m := b.Manager()
	if m == nil {
		return domain.ErrNoManager
	}
	return m.Replace(b, result, next, arg)
}

// PopState asks the owning manager to pop this node, handing result to the node below.
func (b *Base[A, R]) PopState(result R) error {
	m := b.Manager()
	if m == nil {
		return domain.ErrNoManager
	}
	return m.Pop(b, result)
}

// Push is Manager.Push with the argument type checked at compile time.
func Push[A, R any](m *Manager, n Typed[A, R], arg A) error {
	return m.Push(n, arg)
}

// Replace is Manager.Replace with result and argument types checked at compile time.
func Replace[A1, R1, A2, R2 any](m *Manager, old Typed[A1, R1], result R1, next Typed[A2, R2], arg A2) error {
	return m.Replace(old, result, next, arg)
}

// Pop is Manager.Pop with the result type checked at compile time.
func Pop[A, R any](m *Manager, n Typed[A, R], result R) error {
	return m.Pop(n, result)
}
