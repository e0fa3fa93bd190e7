package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/plife/config"
)

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	config.MustInit("")
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func TestNewAppliesStartingPreset(t *testing.T) {
	g := newTestGame(t, Options{Preset: "small_clusters"})

	if g.preset != "small_clusters" {
		t.Errorf("expected preset small_clusters, got %s", g.preset)
	}
	if got := len(g.Engine().Particles()); got != 600 {
		t.Errorf("expected 600 particles, got %d", got)
	}
	if got := g.Engine().Kinds(); got != 6 {
		t.Errorf("expected 6 kinds, got %d", got)
	}
	if got := g.Engine().Backend(); got != "cpu" {
		t.Errorf("expected cpu backend, got %s", got)
	}
}

func TestNewRejectsUnknownPreset(t *testing.T) {
	config.MustInit("")
	if _, err := New(Options{Seed: 1, Preset: "nope"}); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestUpdateHeadlessAdvancesTicks(t *testing.T) {
	g := newTestGame(t, Options{})

	for i := 0; i < 5; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if g.Tick() != 5 {
		t.Errorf("expected tick 5, got %d", g.Tick())
	}
}

func TestPresetSwitchKeepsBoundaryMode(t *testing.T) {
	g := newTestGame(t, Options{})

	g.setWrap(true)
	if err := g.applyPreset("chaos"); err != nil {
		t.Fatalf("applyPreset: %v", err)
	}

	if !g.Engine().Table().Wrap {
		t.Error("expected wrap to survive preset switch")
	}
	if g.Tick() != 0 {
		t.Errorf("expected tick reset, got %d", g.Tick())
	}
}

func TestTelemetryWindowWritesCSV(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, Options{OutputDir: dir})
	g.windowTicks = 10

	for i := 0; i < 25; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	g.Close()

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus a row per completed window (ticks 10 and 20).
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "window_end") {
		t.Errorf("expected header with window_end, got %q", lines[0])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config.yaml in output dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("expected perf.csv in output dir: %v", err)
	}
}
