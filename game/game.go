// Package game wires the simulation engine, camera, renderer, and UI into
// the interactive application loop. It owns pacing (wall-clock step
// accumulation), preset switching, telemetry windows, and input.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/plife/camera"
	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/renderer"
	"github.com/pthm-cable/plife/sim"
	"github.com/pthm-cable/plife/telemetry"
	"github.com/pthm-cable/plife/ui"
)

// Options configures a new Game.
type Options struct {
	// Seed for table generation and particle placement. 0 uses the
	// current time.
	Seed int64

	// Preset overrides the configured starting preset when non-empty.
	Preset string

	// Backend executes simulation ticks. nil selects the CPU pool.
	Backend sim.Backend

	// LogStats emits window stats to the log on every telemetry flush.
	LogStats bool

	// OutputDir enables CSV output when non-empty.
	OutputDir string
}

// Game holds the complete application state.
type Game struct {
	cfg    *config.Config
	engine *sim.Engine
	rng    *rand.Rand

	preset string
	wrap   bool

	cam       *camera.Camera
	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	controls  *ui.ControlsPanel

	trails     [][]sim.Particle
	showTrails bool

	perf     *telemetry.PerfCollector
	output   *telemetry.OutputManager
	logStats bool

	// Telemetry window bounds, in ticks.
	windowTicks uint64
	windowStart uint64

	slowed    bool
	tracked   int // particle index the camera follows, -1 for none
	stepAccum float64
	lastTime  time.Time
}

// New creates a game from the loaded configuration.
func New(opts Options) (*Game, error) {
	cfg := config.Cfg()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	layout := sim.LayoutUniform
	if cfg.Sim.Layout == "clustered" {
		layout = sim.LayoutClustered
	}

	g := &Game{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		engine: sim.NewEngine(sim.Options{
			Width:   cfg.Derived.ScreenW32,
			Height:  cfg.Derived.ScreenH32,
			Backend: opts.Backend,
			Seed:    seed,
			Layout:  layout,
		}),
		wrap:       cfg.Sim.Wrap,
		showTrails: cfg.Render.ShowTrails,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:   opts.LogStats,
		tracked:    -1,
		lastTime:   time.Now(),
	}

	preset := cfg.Sim.Preset
	if opts.Preset != "" {
		preset = opts.Preset
	}
	if err := g.applyPreset(preset); err != nil {
		g.engine.Close()
		return nil, err
	}

	// Steps per second is fixed per run, so windows are a fixed tick count.
	g.windowTicks = uint64(cfg.Telemetry.StatsWindow * float64(cfg.Sim.StepsPerSecond))

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			g.engine.Close()
			return nil, fmt.Errorf("game: output dir: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config copy", "error", err)
		}
		g.output = om
		slog.Info("csv output enabled", "dir", om.Dir())
	}

	g.cam = camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
		cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	g.cam.Wrap = g.wrap
	g.particles = renderer.NewParticleRenderer()
	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(int32(cfg.Screen.Width)-260, 10, 250)

	slog.Info("game created",
		"seed", seed,
		"backend", g.engine.Backend(),
		"preset", g.preset,
		"particles", len(g.engine.Particles()),
		"kinds", g.engine.Kinds(),
	)
	return g, nil
}

// applyPreset generates a fresh rule table from the named preset and reseeds
// the population. The current boundary mode carries over.
func (g *Game) applyPreset(name string) error {
	pc, err := g.cfg.Preset(name)
	if err != nil {
		return err
	}

	kinds := pc.Kinds
	if g.cfg.Sim.Kinds > 0 {
		kinds = g.cfg.Sim.Kinds
	}
	particles := pc.Particles
	if g.cfg.Sim.Particles > 0 {
		particles = g.cfg.Sim.Particles
	}

	table, err := sim.GenerateTable(sim.TableSpec{
		Kinds:        kinds,
		AttractMean:  float32(pc.AttractionMean),
		AttractStd:   float32(pc.AttractionStd),
		RepelMin:     float32(pc.RepelMin),
		RepelMax:     float32(pc.RepelMax),
		InfluenceMin: float32(pc.InfluenceMin),
		InfluenceMax: float32(pc.InfluenceMax),
		Friction:     float32(pc.Friction),
		FlatForce:    pc.FlatForce,
		Wrap:         g.wrap,
	}, g.rng)
	if err != nil {
		return fmt.Errorf("game: preset %q: %w", name, err)
	}
	if err := g.engine.Seed(kinds, particles, table); err != nil {
		return fmt.Errorf("game: preset %q: %w", name, err)
	}

	g.preset = name
	g.trails = g.trails[:0]
	g.windowStart = 0
	g.tracked = -1

	slog.Info("preset applied", "preset", name, "kinds", kinds, "particles", particles)
	return nil
}

// setWrap stages the boundary mode on the engine and keeps the camera's
// wrap behavior in sync.
func (g *Game) setWrap(wrap bool) {
	if err := g.engine.SetWrap(wrap); err != nil {
		slog.Warn("wrap toggle rejected", "error", err)
		return
	}
	g.wrap = wrap
	if g.cam != nil {
		g.cam.Wrap = wrap
	}
}

// Engine exposes the simulation engine, mainly for tests and the headless
// driver.
func (g *Game) Engine() *sim.Engine { return g.engine }

// Tick returns the number of completed simulation ticks.
func (g *Game) Tick() uint64 { return g.engine.Tick() }

// Close releases the engine and flushes any open output files.
func (g *Game) Close() {
	g.engine.Close()
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
