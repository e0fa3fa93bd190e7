package sim

import (
	"math/rand"
	"testing"
)

// testPopulation builds a deterministic particle set and frozen rule snapshot
// large enough to cross the parallel threshold.
func testPopulation(t *testing.T, n int) ([]Particle, *Snapshot) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	table, err := GenerateTable(TableSpec{
		Kinds: 6, AttractMean: 0.02, AttractStd: 0.06,
		RepelMin: 0, RepelMax: 20, InfluenceMin: 20, InfluenceMax: 70,
		Friction: 0.05, Wrap: true,
	}, rng)
	if err != nil {
		t.Fatalf("GenerateTable: %v", err)
	}
	ps := make([]Particle, n)
	generate(ps, table.Kinds, LayoutUniform, rng)
	return ps, table.freeze()
}

func TestCPUBackendParallelMatchesSerial(t *testing.T) {
	// Worker count must not change results: chunks write disjoint output
	// ranges, and every worker reads the same immutable source buffer. The
	// comparison is exact, not approximate.
	const n = 300
	ps, rules := testPopulation(t, n)

	serial := NewCPUBackend(1)
	defer serial.Close()
	parallel := NewCPUBackend(8)
	defer parallel.Close()

	srcS := append([]Particle(nil), ps...)
	srcP := append([]Particle(nil), ps...)
	dstS := make([]Particle, n)
	dstP := make([]Particle, n)

	for tick := 0; tick < 10; tick++ {
		if err := serial.Step(dstS, srcS, rules, 1600, 900); err != nil {
			t.Fatalf("serial Step: %v", err)
		}
		if err := parallel.Step(dstP, srcP, rules, 1600, 900); err != nil {
			t.Fatalf("parallel Step: %v", err)
		}
		for i := range dstS {
			if dstS[i] != dstP[i] {
				t.Fatalf("tick %d particle %d: serial %+v, parallel %+v", tick, i, dstS[i], dstP[i])
			}
		}
		srcS, dstS = dstS, srcS
		srcP, dstP = dstP, srcP
	}
}

func TestCPUBackendSmallPopulation(t *testing.T) {
	// Below the dispatch threshold the pool path is skipped entirely; the
	// results must still match a single-threaded run.
	ps, rules := testPopulation(t, parallelThreshold-1)

	serial := NewCPUBackend(1)
	defer serial.Close()
	pooled := NewCPUBackend(4)
	defer pooled.Close()

	dstS := make([]Particle, len(ps))
	dstP := make([]Particle, len(ps))
	if err := serial.Step(dstS, ps, rules, 800, 600); err != nil {
		t.Fatalf("serial Step: %v", err)
	}
	if err := pooled.Step(dstP, ps, rules, 800, 600); err != nil {
		t.Fatalf("pooled Step: %v", err)
	}
	for i := range dstS {
		if dstS[i] != dstP[i] {
			t.Fatalf("particle %d: %+v vs %+v", i, dstS[i], dstP[i])
		}
	}
}

func TestCPUBackendCloseIdempotent(t *testing.T) {
	b := NewCPUBackend(4)
	ps, rules := testPopulation(t, 128)
	dst := make([]Particle, len(ps))
	if err := b.Step(dst, ps, rules, 800, 600); err != nil {
		t.Fatalf("Step: %v", err)
	}
	b.Close()
	b.Close()
}
