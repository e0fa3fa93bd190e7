// Command steptime measures raw Step throughput for every preset, in both
// boundary modes, on the CPU backend.
//
// Usage: go run ./cmd/steptime -ticks 1000 -output steptime.csv
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/sim"
)

type result struct {
	Preset      string  `csv:"preset"`
	Boundary    string  `csv:"boundary"`
	Particles   int     `csv:"particles"`
	Kinds       int     `csv:"kinds"`
	Ticks       int     `csv:"ticks"`
	MeanUS      float64 `csv:"mean_us"`
	StdUS       float64 `csv:"std_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	ticks := flag.Int("ticks", 1000, "Timed ticks per case")
	warmup := flag.Int("warmup", 100, "Untimed ticks before measuring")
	seed := flag.Int64("seed", 5, "RNG seed for table and particle generation")
	workers := flag.Int("workers", 0, "CPU worker count (0 = all cores)")
	output := flag.String("output", "", "CSV output path (empty = log only)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var results []result
	for _, name := range cfg.Derived.PresetNames {
		for _, wrap := range []bool{false, true} {
			r, err := timeCase(cfg, name, wrap, *seed, *workers, *warmup, *ticks)
			if err != nil {
				slog.Error("case failed", "preset", name, "wrap", wrap, "error", err)
				os.Exit(1)
			}
			slog.Info("case done",
				"preset", r.Preset,
				"boundary", r.Boundary,
				"particles", r.Particles,
				"mean_us", r.MeanUS,
				"ticks_per_sec", r.TicksPerSec,
			)
			results = append(results, r)
		}
	}

	if *output == "" {
		return
	}
	f, err := os.Create(*output)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := gocsv.Marshal(results, f); err != nil {
		slog.Error("failed to write csv", "error", err)
		os.Exit(1)
	}
	slog.Info("results written", "path", *output, "cases", len(results))
}

// timeCase runs one preset in one boundary mode and returns tick timing
// statistics in microseconds.
func timeCase(cfg *config.Config, preset string, wrap bool, seed int64, workers, warmup, ticks int) (result, error) {
	pc, err := cfg.Preset(preset)
	if err != nil {
		return result{}, err
	}

	table, err := sim.GenerateTable(sim.TableSpec{
		Kinds:        pc.Kinds,
		AttractMean:  float32(pc.AttractionMean),
		AttractStd:   float32(pc.AttractionStd),
		RepelMin:     float32(pc.RepelMin),
		RepelMax:     float32(pc.RepelMax),
		InfluenceMin: float32(pc.InfluenceMin),
		InfluenceMax: float32(pc.InfluenceMax),
		Friction:     float32(pc.Friction),
		FlatForce:    pc.FlatForce,
		Wrap:         wrap,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return result{}, err
	}

	eng := sim.NewEngine(sim.Options{
		Width:   cfg.Derived.ScreenW32,
		Height:  cfg.Derived.ScreenH32,
		Backend: sim.NewCPUBackend(workers),
		Seed:    seed,
	})
	defer eng.Close()

	if err := eng.Seed(pc.Kinds, pc.Particles, table); err != nil {
		return result{}, err
	}

	for i := 0; i < warmup; i++ {
		if err := eng.Step(); err != nil {
			return result{}, err
		}
	}

	samples := make([]float64, ticks)
	for i := range samples {
		start := time.Now()
		if err := eng.Step(); err != nil {
			return result{}, err
		}
		samples[i] = float64(time.Since(start).Microseconds())
	}

	mean, std := stat.MeanStdDev(samples, nil)

	boundary := "reflect"
	if wrap {
		boundary = "wrap"
	}
	return result{
		Preset:      preset,
		Boundary:    boundary,
		Particles:   pc.Particles,
		Kinds:       pc.Kinds,
		Ticks:       ticks,
		MeanUS:      mean,
		StdUS:       std,
		TicksPerSec: 1e6 / mean,
	}, nil
}
