package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/aretw0/aplus"
	"github.com/aretw0/aplus/internal/config"
	"github.com/aretw0/aplus/internal/presentation/graph"
	"github.com/aretw0/aplus/internal/presentation/tui"
	httpAdapter "github.com/aretw0/aplus/pkg/adapters/http"
	"github.com/aretw0/aplus/pkg/adapters/terminal"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/match"
	"github.com/aretw0/aplus/pkg/observability"
	"github.com/aretw0/aplus/pkg/ports"
	"github.com/aretw0/aplus/pkg/registry"
	"github.com/aretw0/aplus/pkg/scene"
	"github.com/aretw0/aplus/pkg/setup"
)

// MatchOptions configures RunMatch.
type MatchOptions struct {
	Path        string
	Debug       bool
	LogFormat   string
	Quiet       bool
	Interactive bool
	Strict      bool
	Queued      bool
	Tick        time.Duration
	// Serve is the listen address of the inspection server; empty disables it.
	Serve string
	// Hold keeps the inspection server up after the match until interrupted.
	Hold bool
	// Mermaid is a file the transition chart is written to; empty disables it.
	Mermaid string
	// Redis is the address of the server match records are saved to; empty keeps them in memory.
	Redis string
	Out   io.Writer
}

// RunMatch plays the match described by the file at opts.Path.
func RunMatch(ctx context.Context, opts MatchOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()
	ctx = sigCtx

	file, err := config.Load(opts.Path)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	setting := file.Setting()
	roster, err := setup.NewRoster(setting.Players)
	if err != nil {
		return err
	}

	logger := createLogger(opts.Debug, opts.LogFormat)
	metrics := observability.NewMetrics()
	journal := observability.NewJournal()
	streams := httpAdapter.NewStreamManager(logger)
	reg := registry.NewRegistry()

	hooks := domain.ChainHooks(journal.Hooks(), streams.Hooks())
	if opts.Debug {
		hooks = domain.ChainHooks(hooks, createDebugHooks(logger))
	}

	var input ports.InputSource = file.ScriptInput(setting.Players)
	var screen tcell.Screen
	if opts.Interactive {
		if screen, err = tcell.NewScreen(); err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		defer screen.Fini()
		keys := terminal.NewInput(screen, terminal.WithLogger(logger), terminal.WithInterrupt(sigCtx.Cancel))
		go keys.Run(ctx)
		input = keys
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = aplus.DefaultTickInterval
	}
	gameOpts := []aplus.Option{
		aplus.WithInput(input),
		aplus.WithArena(file.ScriptArena()),
		aplus.WithRegistry(reg),
		aplus.WithMetrics(metrics),
		aplus.WithLifecycleHooks(hooks),
		aplus.WithLogger(logger),
		aplus.WithTickInterval(tick),
		aplus.WithStrictLifecycle(opts.Strict),
		aplus.WithQueuedTransitions(opts.Queued),
	}
	if opts.Redis != "" {
		store, err := openRedis(ctx, opts.Redis)
		if err != nil {
			return err
		}
		defer store.Close()
		gameOpts = append(gameOpts, aplus.WithStore(store))
	}
	game := aplus.New(gameOpts...)

	if opts.Serve != "" {
		stop := serve(opts.Serve, logger, httpAdapter.NewHandler(
			httpAdapter.WithInspector(game),
			httpAdapter.WithStore(game.Store()),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		))
		defer stop()
		if !opts.Quiet {
			printSystemMessage(opts.Out, "Inspection server on %s", opts.Serve)
		}
	}

	renderer, err := tui.NewRenderer(opts.Out)
	if err != nil {
		return err
	}
	if screen != nil {
		viewCtx, stopView := context.WithCancel(ctx)
		defer stopView()
		go runView(viewCtx, tui.NewScreen(screen), game, reg)
	} else if !opts.Quiet {
		tui.PrintBanner(opts.Out)
		printBoards(reg, renderer, opts.Out, logger)
	}

	if !roster.Ready() {
		if err := game.Setup(ctx, roster); err != nil {
			return handleExecutionError(err)
		}
		setting.Players = roster.Settings()
	}

	record, err := game.Play(ctx, setting)
	if opts.Mermaid != "" {
		chart := graph.GenerateMermaid(journal.Entries(), nil)
		if werr := os.WriteFile(opts.Mermaid, []byte(chart), 0o644); werr != nil {
			logger.Error("failed to write chart", "path", opts.Mermaid, "err", werr)
		}
	}
	if err != nil {
		if isInterrupted(err) && !opts.Quiet {
			printSystemMessage(opts.Out, "Interrupted at '%s'.", tui.StackLine(game.LastStack()))
		}
		return handleExecutionError(err)
	}

	if screen != nil {
		screen.Fini()
	}
	if !opts.Quiet {
		out, err := renderer.Render(tui.StandingsMarkdown(record))
		if err != nil {
			return err
		}
		fmt.Fprint(opts.Out, out)
		printSystemMessage(opts.Out, "Match %s saved.", record.ID)
	}

	if opts.Serve != "" && opts.Hold {
		if !opts.Quiet {
			printSystemMessage(opts.Out, "Serving results until interrupted.")
		}
		<-ctx.Done()
	}
	return nil
}

// printBoards renders every ranking board as the ranking state gains focus.
func printBoards(reg *registry.Registry, renderer *tui.Renderer, w io.Writer, logger *slog.Logger) {
	registry.Observe[*match.Ranking](reg, &scene.ObserverHooks[*match.Ranking]{
		OnFocus: func(_ context.Context, r *match.Ranking) error {
			out, err := renderer.Render(tui.BoardMarkdown(r.Board()))
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
			return nil
		},
	})
	logger.Debug("board printer attached")
}

// serve starts an HTTP server on addr and returns a func shutting it down.
func serve(addr string, logger *slog.Logger, handler http.Handler) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("inspection server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("inspection server shutdown", "err", err)
		}
	}
}
