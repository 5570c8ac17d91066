package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/game"
	"github.com/pthm-cable/sph/server"
	"github.com/pthm-cable/sph/terminal"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	term := flag.Bool("terminal", false, "Render in the terminal instead of a window")
	addr := flag.String("addr", "", "Websocket listen address, e.g. :8080 (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in simulated seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	particles := flag.Int("particles", 0, "Initial particle count (0 = use config)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N simulation steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation steps per update call (0 = use config)")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// termbox owns stdout in terminal mode
	var logOut io.Writer = os.Stdout
	if *term {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "sph.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless || *term,
		StepsPerUpdate: *stepsPerUpdate,
		ParticleCount:  *particles,
	}

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	serve := listen != ""

	if serve || *term {
		opts.Publisher = &fluid.FramePublisher{}
	}
	if serve {
		updates := make(chan server.ParamUpdate, 16)
		srv := server.New(listen, cfg.Server.BroadcastHz, opts.Publisher, updates)
		opts.Updates = updates
		opts.ClientCount = srv.ClientCount
		go func() {
			if err := srv.Run(ctx); err != nil {
				slog.Error("server stopped", "error", err)
				stop()
			}
		}()
	}

	var err error
	switch {
	case *term:
		err = runTerminal(ctx, stop, opts, *maxSteps)
	case *headless:
		err = runHeadless(ctx, opts, *maxSteps, serve)
	default:
		err = runWindow(opts, *maxSteps)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps as fast as possible, or at the target frame rate when
// frames are being streamed.
func runHeadless(ctx context.Context, opts game.Options, maxSteps int, paced bool) error {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"max_steps", maxSteps,
		"steps_per_update", g.StepsPerUpdate(),
	)

	var tick <-chan time.Time
	if paced {
		t := time.NewTicker(time.Second / time.Duration(max(config.Cfg().Screen.TargetFPS, 1)))
		defer t.Stop()
		tick = t.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		g.UpdateHeadless()

		if maxSteps > 0 && int(g.Step()) >= maxSteps {
			slog.Info("max steps reached", "step", g.Step())
			return nil
		}
	}
}

// runTerminal runs the simulation in the background and the viewer in the
// foreground. Quitting the viewer stops the simulation.
func runTerminal(ctx context.Context, stop context.CancelFunc, opts game.Options, maxSteps int) error {
	simErr := make(chan error, 1)
	go func() {
		defer stop()
		simErr <- runHeadless(ctx, opts, maxSteps, true)
	}()

	viewer := terminal.New(opts.Publisher, config.Cfg().Terminal.FPS)
	err := viewer.Run(ctx)
	stop()
	if serr := <-simErr; serr != nil {
		return serr
	}
	return err
}

func runWindow(opts game.Options, maxSteps int) error {
	cfg := config.Cfg()
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxSteps > 0 && int(g.Step()) >= maxSteps {
			break
		}
	}
	return nil
}
