package sim

import (
	"fmt"
	"math/rand"
	"testing"
)

// benchPreset mirrors the shipped preset catalog so step cost is measured on
// realistic rule tables rather than synthetic ones.
type benchPreset struct {
	name      string
	particles int
	spec      TableSpec
}

var benchPresets = []benchPreset{
	{"balanced", 400, TableSpec{Kinds: 9, AttractMean: -0.02, AttractStd: 0.06, RepelMin: 0, RepelMax: 20, InfluenceMin: 20, InfluenceMax: 70, Friction: 0.05}},
	{"chaos", 400, TableSpec{Kinds: 6, AttractMean: 0.02, AttractStd: 0.04, RepelMin: 0, RepelMax: 30, InfluenceMin: 30, InfluenceMax: 100, Friction: 0.01}},
	{"diversity", 400, TableSpec{Kinds: 12, AttractMean: -0.01, AttractStd: 0.04, RepelMin: 0, RepelMax: 20, InfluenceMin: 10, InfluenceMax: 60, Friction: 0.05, FlatForce: true}},
	{"frictionless", 300, TableSpec{Kinds: 6, AttractMean: 0.01, AttractStd: 0.005, RepelMin: 10, RepelMax: 10, InfluenceMin: 10, InfluenceMax: 60, Friction: 0, FlatForce: true}},
	{"gliders", 400, TableSpec{Kinds: 6, AttractMean: 0, AttractStd: 0.06, RepelMin: 0, RepelMax: 20, InfluenceMin: 10, InfluenceMax: 50, Friction: 0.01, FlatForce: true}},
	{"homogeneity", 400, TableSpec{Kinds: 4, AttractMean: 0, AttractStd: 0.04, RepelMin: 10, RepelMax: 10, InfluenceMin: 10, InfluenceMax: 80, Friction: 0.05, FlatForce: true}},
	{"large_clusters", 400, TableSpec{Kinds: 6, AttractMean: 0.025, AttractStd: 0.02, RepelMin: 0, RepelMax: 30, InfluenceMin: 30, InfluenceMax: 100, Friction: 0.2}},
	{"medium_clusters", 400, TableSpec{Kinds: 6, AttractMean: 0.02, AttractStd: 0.05, RepelMin: 0, RepelMax: 20, InfluenceMin: 20, InfluenceMax: 50, Friction: 0.05}},
	{"quiescence", 300, TableSpec{Kinds: 6, AttractMean: -0.02, AttractStd: 0.1, RepelMin: 10, RepelMax: 20, InfluenceMin: 20, InfluenceMax: 60, Friction: 0.2}},
	{"small_clusters", 600, TableSpec{Kinds: 6, AttractMean: -0.005, AttractStd: 0.01, RepelMin: 10, RepelMax: 10, InfluenceMin: 20, InfluenceMax: 50, Friction: 0.01}},
}

func benchStep(b *testing.B, preset benchPreset, wrap bool, workers int) {
	rng := rand.New(rand.NewSource(5))
	spec := preset.spec
	spec.Wrap = wrap
	table, err := GenerateTable(spec, rng)
	if err != nil {
		b.Fatalf("GenerateTable: %v", err)
	}

	e := NewEngine(Options{Width: 1600, Height: 900, Seed: 5, Backend: NewCPUBackend(workers)})
	defer e.Close()
	if err := e.Seed(spec.Kinds, preset.particles, table); err != nil {
		b.Fatalf("Seed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Step(); err != nil {
			b.Fatalf("Step: %v", err)
		}
	}
}

func BenchmarkStep(b *testing.B) {
	for _, wrap := range []bool{false, true} {
		mode := "reflect"
		if wrap {
			mode = "wrap"
		}
		for _, preset := range benchPresets {
			b.Run(fmt.Sprintf("%s/%s", mode, preset.name), func(b *testing.B) {
				benchStep(b, preset, wrap, 0)
			})
		}
	}
}

func BenchmarkStepSerial(b *testing.B) {
	for _, preset := range benchPresets {
		b.Run(preset.name, func(b *testing.B) {
			benchStep(b, preset, false, 1)
		})
	}
}
