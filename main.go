package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/game"
	"github.com/pthm-cable/plife/gpu"
	"github.com/pthm-cable/plife/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	useGPU := flag.Bool("gpu", false, "Step on the compute shader backend (requires graphics)")
	preset := flag.String("preset", "", "Starting preset (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	gpuEnabled := *useGPU || cfg.GPU.Enabled
	if *headless && gpuEnabled {
		slog.Error("gpu backend needs a window for its GL context, cannot combine with -headless")
		os.Exit(1)
	}

	opts := game.Options{
		Seed:      *seed,
		Preset:    *preset,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		g, err := game.New(opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			os.Exit(1)
		}
		defer g.Close()

		slog.Info("starting headless simulation", "max_ticks", *maxTicks)
		for {
			if err := g.UpdateHeadless(); err != nil {
				slog.Error("step failed", "error", err)
				os.Exit(1)
			}
			if *maxTicks > 0 && g.Tick() >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "plife")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	// The compute backend compiles its shader against the window's GL
	// context, so it can only be created after InitWindow.
	var backend sim.Backend
	if gpuEnabled {
		b, err := gpu.New()
		if err != nil {
			slog.Error("failed to create gpu backend", "error", err)
			os.Exit(1)
		}
		backend = b
	}
	opts.Backend = backend

	g, err := game.New(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			break
		}
	}
}
