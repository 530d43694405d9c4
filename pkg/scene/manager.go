package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/domain"
)

// Manager owns a stack of scene states and drives them through their lifecycle.
//
// Push, Replace and Pop only record a request; the request is applied by the next
// call to Step (or by Run). By default at most one request is pending and a newer
// request overwrites an older one that has not started yet.
type Manager struct {
	mu      sync.Mutex
	stack   []Node
	pending []request
	busy    bool

	queued    bool
	strict    bool
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	onEmptied func(ctx context.Context, last Node, result any)
	onTick    func(ctx context.Context)
}

type request struct {
	kind   domain.TransitionKind
	top    Node
	next   Node
	arg    any
	result any
}

// transition is a request resolved against the stack at execution time.
type transition struct {
	kind   domain.TransitionKind
	old    Node
	next   Node
	arg    any
	result any
	depth  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and the states it loads.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithStrictLifecycle makes out-of-order lifecycle steps fail with domain.ErrStepOrder
// instead of being logged.
func WithStrictLifecycle(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// WithQueuedTransitions keeps every request in FIFO order instead of letting the
// latest request replace a pending one.
func WithQueuedTransitions(queued bool) Option {
	return func(m *Manager) {
		m.queued = queued
	}
}

// WithStackEmptied registers the callback invoked once a pop leaves the stack empty.
// It receives the popped state and the result it was popped with.
func WithStackEmptied(fn func(ctx context.Context, last Node, result any)) Option {
	return func(m *Manager) {
		m.onEmptied = fn
	}
}

// WithTick registers fn to run on every Run tick before the focused state updates,
// e.g. to advance an input source to the next frame.
func WithTick(fn func(ctx context.Context)) Option {
	return func(m *Manager) {
		m.onTick = fn
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Push requests that node be loaded on top of the stack with arg.
func (m *Manager) Push(node Node, arg any) error {
	if node == nil {
		return fmt.Errorf("push nil state: %w", domain.ErrInvalidOperation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onStack(node) {
		return fmt.Errorf("push %s: already on stack: %w", NameOf(node), domain.ErrInvalidOperation)
	}
	m.request(request{kind: domain.TransitionPush, next: node, arg: arg})
	return nil
}

// Replace requests that old, which must be on top, be unloaded with result and
// next be loaded in its place with arg.
func (m *Manager) Replace(old Node, result any, next Node, arg any) error {
	if next == nil {
		return fmt.Errorf("replace with nil state: %w", domain.ErrInvalidOperation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !same(m.top(), old) {
		return fmt.Errorf("replace %s: %w", NameOf(old), domain.ErrNotTop)
	}
	if m.onStack(next) {
		return fmt.Errorf("replace with %s: already on stack: %w", NameOf(next), domain.ErrInvalidOperation)
	}
	m.request(request{kind: domain.TransitionReplace, top: m.top(), next: next, arg: arg, result: result})
	return nil
}

// Pop requests that node, which must be on top, be unloaded; result is handed to
// the state below it.
func (m *Manager) Pop(node Node, result any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if node == nil || !same(m.top(), node) {
		return fmt.Errorf("pop %s: %w", NameOf(node), domain.ErrNotTop)
	}
	m.request(request{kind: domain.TransitionPop, top: m.top(), result: result})
	return nil
}

// Undo drops every request that has not started yet.
func (m *Manager) Undo() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

func (m *Manager) request(r request) {
	if m.queued {
		m.pending = append(m.pending, r)
		return
	}
	m.pending = []request{r}
}

func (m *Manager) top() Node {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Manager) onStack(n Node) bool {
	for _, s := range m.stack {
		if same(s, n) {
			return true
		}
	}
	return false
}

// Top returns the state on top of the stack, or nil.
func (m *Manager) Top() Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top()
}

// Depth returns the number of states on the stack.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}

// Pending reports whether a request is waiting to be applied.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending) > 0
}

// Busy reports whether a transition is running.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Frame describes one stack entry.
type Frame struct {
	Name  string            `json:"name"`
	Phase domain.StatePhase `json:"phase"`
}

// Snapshot lists the stack from bottom to top.
func (m *Manager) Snapshot() []Frame {
	m.mu.Lock()
	nodes := make([]Node, len(m.stack))
	copy(nodes, m.stack)
	m.mu.Unlock()

	frames := make([]Frame, len(nodes))
	for i, n := range nodes {
		frames[i] = Frame{Name: NameOf(n), Phase: n.Phase()}
	}
	return frames
}

// Step applies the oldest pending request and runs its transition to completion.
// It reports whether a transition ran. A request whose state is no longer on top
// is dropped with domain.ErrNotTop.
func (m *Manager) Step(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.busy || len(m.pending) == 0 {
		m.mu.Unlock()
		return false, nil
	}
	req := m.pending[0]
	m.pending = m.pending[1:]

	t, err := m.begin(req)
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("dropping stale transition", "kind", req.kind, "err", err)
		return false, err
	}
	m.busy = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}()
	return true, m.run(ctx, t)
}

// begin mutates the stack for r. Called with m.mu held.
func (m *Manager) begin(r request) (transition, error) {
	t := transition{kind: r.kind, arg: r.arg, result: r.result}
	switch r.kind {
	case domain.TransitionPush:
		if m.onStack(r.next) {
			return t, fmt.Errorf("push %s: already on stack: %w", NameOf(r.next), domain.ErrInvalidOperation)
		}
		t.old = m.top()
		t.next = r.next
		m.stack = append(m.stack, r.next)
	case domain.TransitionReplace:
		if !same(m.top(), r.top) {
			return t, fmt.Errorf("replace %s: %w", NameOf(r.top), domain.ErrNotTop)
		}
		t.old = m.top()
		t.next = r.next
		m.stack[len(m.stack)-1] = r.next
	case domain.TransitionPop:
		if !same(m.top(), r.top) {
			return t, fmt.Errorf("pop %s: %w", NameOf(r.top), domain.ErrNotTop)
		}
		t.old = m.top()
		m.stack[len(m.stack)-1] = nil
		m.stack = m.stack[:len(m.stack)-1]
		t.next = m.top()
	}
	t.depth = len(m.stack)
	return t, nil
}

func (m *Manager) run(ctx context.Context, t transition) (err error) {
	start := time.Now()
	m.emitTransition(ctx, domain.EventTransitionStart, t, 0, nil)
	defer func() {
		m.emitTransition(ctx, domain.EventTransitionEnd, t, time.Since(start), err)
	}()

	switch t.kind {
	case domain.TransitionPush:
		if err = m.together(ctx, m.load(t.next, t.arg), m.blur(t.old)); err != nil {
			return err
		}
		if err = m.together(ctx, m.visible(t.next, nil, nil), m.invisible(t.old)); err != nil {
			return err
		}
		return m.together(ctx, m.focus(t.next, nil, nil), nil)

	case domain.TransitionReplace:
		if err = m.together(ctx, m.load(t.next, t.arg), m.blur(t.old)); err != nil {
			return err
		}
		if err = m.together(ctx, m.visible(t.next, nil, nil), m.invisible(t.old)); err != nil {
			return err
		}
		return m.together(ctx, m.focus(t.next, nil, nil), m.unload(t.old))

	case domain.TransitionPop:
		if t.next == nil {
			defer m.emptied(ctx, t)
		}
		if err = m.together(ctx, m.blur(t.old), nil); err != nil {
			return err
		}
		if err = m.together(ctx, m.visible(t.next, t.old, t.result), m.invisible(t.old)); err != nil {
			return err
		}
		return m.together(ctx, m.focus(t.next, t.old, t.result), m.unload(t.old))
	}
	return nil
}

func (m *Manager) emptied(ctx context.Context, t transition) {
	m.logger.Debug("stack emptied", "last", NameOf(t.old))
	if m.hooks.OnStackEmptied != nil {
		m.hooks.OnStackEmptied(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStackEmptied},
			Kind:      t.kind,
			From:      NameOf(t.old),
		})
	}
	if m.onEmptied != nil {
		m.onEmptied(ctx, t.old, t.result)
	}
}

func (m *Manager) emitTransition(ctx context.Context, typ domain.EventType, t transition, d time.Duration, err error) {
	hook := m.hooks.OnTransitionStart
	if typ == domain.EventTransitionEnd {
		hook = m.hooks.OnTransitionEnd
	}
	if hook == nil {
		return
	}
	from, to := t.old, t.next
	hook(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Kind:      t.kind,
		From:      NameOf(from),
		To:        NameOf(to),
		Depth:     t.depth,
		Duration:  d,
		Err:       err,
	})
}

// group is one node's three-step phase sequence; nil means nothing to run.
type group func(ctx context.Context) error

type call struct {
	step domain.Step
	fn   func(ctx context.Context) error
}

// together runs a and b concurrently and waits for both.
// The first failure cancels the context handed to the other.
func (m *Manager) together(ctx context.Context, a, b group) error {
	if b == nil {
		if a == nil {
			return nil
		}
		return a(ctx)
	}
	if a == nil {
		return b(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a(gctx) })
	g.Go(func() error { return b(gctx) })
	return g.Wait()
}

func (m *Manager) sequence(n Node, calls ...call) group {
	return func(ctx context.Context) error {
		for _, c := range calls {
			start := time.Now()
			err := c.fn(ctx)
			if m.hooks.OnStep != nil {
				m.hooks.OnStep(ctx, &domain.StepEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
					State:     NameOf(n),
					Step:      c.step,
					Phase:     n.Phase(),
					Duration:  time.Since(start),
					Err:       err,
				})
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", NameOf(n), c.step, err)
			}
		}
		return nil
	}
}

func (m *Manager) load(n Node, arg any) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreLoad, func(ctx context.Context) error { return n.PreLoad(ctx, m, arg) }},
		call{domain.StepLoad, func(ctx context.Context) error { return n.Load(ctx, m, arg) }},
		call{domain.StepPostLoad, func(ctx context.Context) error { return n.PostLoad(ctx, m, arg) }},
	)
}

func (m *Manager) visible(n, prev Node, result any) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreMakeVisible, func(ctx context.Context) error { return n.PreMakeVisible(ctx, prev, result) }},
		call{domain.StepMakeVisible, func(ctx context.Context) error { return n.MakeVisible(ctx, prev, result) }},
		call{domain.StepPostMakeVisible, func(ctx context.Context) error { return n.PostMakeVisible(ctx, prev, result) }},
	)
}

func (m *Manager) focus(n, prev Node, result any) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreFocus, func(ctx context.Context) error { return n.PreFocus(ctx, prev, result) }},
		call{domain.StepFocus, func(ctx context.Context) error { return n.Focus(ctx, prev, result) }},
		call{domain.StepPostFocus, func(ctx context.Context) error { return n.PostFocus(ctx, prev, result) }},
	)
}

func (m *Manager) blur(n Node) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreBlur, n.PreBlur},
		call{domain.StepBlur, n.Blur},
		call{domain.StepPostBlur, n.PostBlur},
	)
}

func (m *Manager) invisible(n Node) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreMakeInvisible, n.PreMakeInvisible},
		call{domain.StepMakeInvisible, n.MakeInvisible},
		call{domain.StepPostMakeInvisible, n.PostMakeInvisible},
	)
}

func (m *Manager) unload(n Node) group {
	if n == nil {
		return nil
	}
	return m.sequence(n,
		call{domain.StepPreUnload, n.PreUnload},
		call{domain.StepUnload, n.Unload},
		call{domain.StepPostUnload, n.PostUnload},
	)
}

// Settle applies pending requests until none is left, including requests issued
// by the transitions themselves.
func (m *Manager) Settle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ran, err := m.Step(ctx)
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
}

// Update ticks the top state when it is focused, implements Updater and no
// transition is running.
func (m *Manager) Update(ctx context.Context) {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return
	}
	top := m.top()
	m.mu.Unlock()

	u, ok := top.(Updater)
	if !ok || top.Phase() != domain.PhaseFocused {
		return
	}
	if err := u.Update(ctx); err != nil {
		m.logger.Warn("state update failed", "state", NameOf(top), "err", err)
	}
}

// Run ticks the manager every interval until ctx is done. Each tick updates the
// focused state, then starts the pending transition in the background; no update
// happens while a transition is running. Run waits for the running transition
// before returning ctx.Err().
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		wg     sync.WaitGroup
		active atomic.Bool
	)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if active.Load() {
			continue
		}
		if m.onTick != nil {
			m.onTick(ctx)
		}
		m.Update(ctx)
		if !m.Pending() {
			continue
		}
		active.Store(true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer active.Store(false)
			if _, err := m.Step(ctx); err != nil {
				m.logger.Error("transition failed", "err", err)
			}
		}()
	}
}
