package aplus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/adapters/memory"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/observability"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/registry"
	"github.com/aretw0/aplus/pkg/scene"
	"github.com/aretw0/aplus/pkg/setup"
)

// DefaultTickInterval paces the scene manager at roughly sixty frames per second.
const DefaultTickInterval = 16 * time.Millisecond

// Game is the high-level entry point: it runs the key binding lobby and plays matches.
type Game struct {
	input    ports.InputSource
	arena    ports.Arena
	store    ports.MatchStore
	registry *registry.Registry
	metrics  *observability.Metrics
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	interval time.Duration
	strict   bool
	queued   bool
	emptied  func(ctx context.Context, last scene.Node, result any)

	current atomic.Pointer[scene.Manager]
	last    atomic.Pointer[[]scene.Frame]
}

// Option configures a Game.
type Option func(*Game)

// WithInput sets the source of player key presses. Required.
func WithInput(in ports.InputSource) Option {
	return func(g *Game) {
		g.input = in
	}
}

// WithArena sets the runner of the playing phase. Required by Play.
func WithArena(a ports.Arena) Option {
	return func(g *Game) {
		g.arena = a
	}
}

// WithStore sets where finished matches are saved. Defaults to an in-memory store.
func WithStore(s ports.MatchStore) Option {
	return func(g *Game) {
		g.store = s
	}
}

// WithRegistry shares a registry with the caller so observers can attach to the
// match states before Play creates them.
func WithRegistry(r *registry.Registry) Option {
	return func(g *Game) {
		g.registry = r
	}
}

// WithMetrics records transitions and finished matches.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Game) {
		g.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks on every manager the game creates.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Game) {
		g.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithTickInterval sets the frame interval.
func WithTickInterval(d time.Duration) Option {
	return func(g *Game) {
		g.interval = d
	}
}

// WithStrictLifecycle makes out-of-order lifecycle steps fail.
func WithStrictLifecycle(strict bool) Option {
	return func(g *Game) {
		g.strict = strict
	}
}

// WithQueuedTransitions applies stack requests in FIFO order instead of keeping only the last.
func WithQueuedTransitions(queued bool) Option {
	return func(g *Game) {
		g.queued = queued
	}
}

// WithStackEmptied registers a callback run when a session's stack empties, before
// the session ends.
func WithStackEmptied(fn func(ctx context.Context, last scene.Node, result any)) Option {
	return func(g *Game) {
		g.emptied = fn
	}
}

// New creates a game.
func New(opts ...Option) *Game {
	g := &Game{
		logger:   logging.NewNop(),
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = memory.NewStore()
	}
	if g.registry == nil {
		g.registry = registry.NewRegistry()
	}
	return g
}

// Registry returns the registry match states register with while a match runs.
func (g *Game) Registry() *registry.Registry { return g.registry }

// Store returns the match store.
func (g *Game) Store() ports.MatchStore { return g.store }

// Snapshot lists the stack of the running session, or nil between sessions.
func (g *Game) Snapshot() []scene.Frame {
	if m := g.current.Load(); m != nil {
		return m.Snapshot()
	}
	return nil
}

// LastStack returns the stack as the most recent session left it.
func (g *Game) LastStack() []scene.Frame {
	if frames := g.last.Load(); frames != nil {
		return *frames
	}
	return nil
}

// Setup runs the key binding lobby until every player of roster has been asked.
func (g *Game) Setup(ctx context.Context, roster *setup.Roster) error {
	if g.input == nil {
		return fmt.Errorf("setup: %w: no input source", domain.ErrInvalidOperation)
	}
	lobby := setup.NewLobby(g.input)
	return g.session(ctx, func(m *scene.Manager) error {
		return scene.Push[*setup.Roster, struct{}](m, lobby, roster)
	})
}

// Play runs a match of setting to the end and saves its record.
func (g *Game) Play(ctx context.Context, setting *domain.MapSetting) (*domain.MatchRecord, error) {
	if g.input == nil || g.arena == nil {
		return nil, fmt.Errorf("play: %w: input and arena are required", domain.ErrInvalidOperation)
	}
	if err := setting.Validate(); err != nil {
		return nil, err
	}

	stat := domain.NewMapStat(setting)
	placement := match.NewPlacement(g.input)
	ranking := match.NewRanking(g.input)
	controller := match.NewController(match.States{
		Selection: match.NewSelection(g.input),
		Placement: placement,
		Playing:   match.NewPlaying(g.arena),
		Ranking:   ranking,
		Result:    match.NewResult(g.input),
	})

	if !registry.Register[*match.Controller](g.registry, controller) {
		return nil, fmt.Errorf("play: %w: a match is already running", domain.ErrInvalidOperation)
	}
	defer registry.Unregister[*match.Controller](g.registry, controller)
	registry.Register[*match.Placement](g.registry, placement)
	defer registry.Unregister[*match.Placement](g.registry, placement)
	registry.Register[*match.Ranking](g.registry, ranking)
	defer registry.Unregister[*match.Ranking](g.registry, ranking)

	g.logger.Info("match started", "map", setting.Name, "rounds", len(setting.Rounds), "players", len(setting.Players))
	err := g.session(ctx, func(m *scene.Manager) error {
		return scene.Push[*domain.MapStat, struct{}](m, controller, stat)
	})
	if err != nil {
		return nil, err
	}
	// Let observers see the last steps before the record is taken.
	if err := errors.Join(controller.Sync(ctx), placement.Sync(ctx), ranking.Sync(ctx)); err != nil {
		return nil, err
	}

	record := domain.NewMatchRecord(stat)
	if err := g.store.Save(ctx, record); err != nil {
		return record, fmt.Errorf("save match: %w", err)
	}
	if g.metrics != nil {
		g.metrics.MatchFinished(record)
	}
	g.logger.Info("match finished", "id", record.ID, "rounds", record.RoundsPlayed)
	return record, nil
}

// session runs a fresh manager until its stack empties, a transition fails or ctx ends.
func (g *Game) session(ctx context.Context, start func(*scene.Manager) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		failure error
		done    bool
	)
	guard := domain.LifecycleHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			if e.Err == nil {
				return
			}
			mu.Lock()
			if failure == nil {
				failure = e.Err
			}
			mu.Unlock()
			cancel()
		},
	}
	hooks := domain.ChainHooks(g.hooks, guard)
	if g.metrics != nil {
		hooks = domain.ChainHooks(hooks, g.metrics.Hooks())
	}

	m := scene.NewManager(
		scene.WithLogger(g.logger),
		scene.WithLifecycleHooks(hooks),
		scene.WithStrictLifecycle(g.strict),
		scene.WithQueuedTransitions(g.queued),
		scene.WithTick(func(context.Context) { g.input.NextFrame() }),
		scene.WithStackEmptied(func(ctx context.Context, last scene.Node, result any) {
			if g.emptied != nil {
				g.emptied(ctx, last, result)
			}
			mu.Lock()
			done = true
			mu.Unlock()
			cancel()
		}),
	)
	if err := start(m); err != nil {
		return err
	}
	g.current.Store(m)
	defer func() {
		frames := m.Snapshot()
		g.last.Store(&frames)
		g.current.Store(nil)
	}()

	runErr := m.Run(runCtx, g.interval)

	mu.Lock()
	defer mu.Unlock()
	switch {
	case failure != nil:
		return failure
	case done:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return runErr
	}
}
