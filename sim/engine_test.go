package sim

import (
	"math"
	"testing"
)

// newTestEngine builds a seeded engine with an explicit particle state so
// tests control the exact geometry.
func newTestEngine(t *testing.T, width, height float32, table *RuleTable, ps []Particle) *Engine {
	t.Helper()
	e := NewEngine(Options{Width: width, Height: height, Seed: 1})
	if err := e.Seed(table.Kinds, len(ps), table); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := e.LoadParticles(ps); err != nil {
		t.Fatalf("LoadParticles: %v", err)
	}
	return e
}

func pixelDist(e *Engine, i, j int, width, height float32) float64 {
	ps := e.Particles()
	dx := float64((ps[j].Pos.X - ps[i].Pos.X) * 0.5 * width)
	dy := float64((ps[j].Pos.Y - ps[i].Pos.Y) * 0.5 * height)
	return math.Sqrt(dx*dx + dy*dy)
}

func TestStepFrictionOnlyDamping(t *testing.T) {
	// Particles far outside each other's influence radius contribute zero
	// force even with a nonzero attraction, so each velocity must damp by
	// exactly (1 - friction).
	const friction = 0.05
	table := validTable(2, 0.5, 10, 20, friction)

	ps := []Particle{
		{Pos: Vec2{-0.9, -0.9}, Vel: Vec2{1, 2}, Kind: 0},
		{Pos: Vec2{0.9, 0.9}, Vel: Vec2{-3, 0.5}, Kind: 1},
	}
	e := newTestEngine(t, 200, 200, table, ps)
	defer e.Close()

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	const damp = float32(1 - friction)
	for i, p := range e.Particles() {
		wantX := ps[i].Vel.X * damp
		wantY := ps[i].Vel.Y * damp
		if p.Vel.X != wantX || p.Vel.Y != wantY {
			t.Errorf("particle %d vel = (%v,%v), want exactly (%v,%v)",
				i, p.Vel.X, p.Vel.Y, wantX, wantY)
		}
	}
}

func TestStepWrapBoundary(t *testing.T) {
	table := validTable(1, 0, 10, 20, 0)
	table.Wrap = true

	// Width and height of 2 make pixel and clip units coincide.
	ps := []Particle{{Pos: Vec2{0.999, 0}, Vel: Vec2{0.01, 0}, Kind: 0}}
	e := newTestEngine(t, 2, 2, table, ps)
	defer e.Close()

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	got := e.Particles()[0].Pos
	if math.Abs(float64(got.X)-(-0.991)) > 1e-6 {
		t.Errorf("pos.X = %v, want -0.991 (wrapped)", got.X)
	}
	if got.Y != 0 {
		t.Errorf("pos.Y = %v, want 0", got.Y)
	}
}

func TestStepReflectBoundary(t *testing.T) {
	table := validTable(1, 0, 10, 20, 0)

	// Margin is Diameter/width = 0.05 at 200px; crossing it clamps the
	// position and negates the velocity component.
	ps := []Particle{{Pos: Vec2{0.9, 0}, Vel: Vec2{20, 0}, Kind: 0}}
	e := newTestEngine(t, 200, 200, table, ps)
	defer e.Close()

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	got := e.Particles()[0]
	if math.Abs(float64(got.Pos.X)-0.95) > 1e-6 {
		t.Errorf("pos.X = %v, want clamped to 0.95", got.Pos.X)
	}
	if got.Vel.X != -20 {
		t.Errorf("vel.X = %v, want -20 (bounced)", got.Vel.X)
	}
}

func TestStepRepulsionScenario(t *testing.T) {
	// Two same-kind particles inside the repel zone, zero attraction, no
	// friction: they must separate monotonically until the pair leaves the
	// influence radius, then coast at constant velocity.
	table := validTable(1, 0, 20, 40, 0)

	const width, height = 200, 200
	ps := []Particle{
		{Pos: Vec2{-0.04, 0}, Kind: 0},
		{Pos: Vec2{0.04, 0}, Kind: 0},
	}
	e := newTestEngine(t, width, height, table, ps)
	defer e.Close()

	sep := pixelDist(e, 0, 1, width, height)
	ticks := 0
	for sep <= 40 {
		if ticks++; ticks > 500 {
			t.Fatalf("pair never left influence radius, separation %v", sep)
		}
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		next := pixelDist(e, 0, 1, width, height)
		if next <= sep {
			t.Fatalf("tick %d: separation %v not strictly above %v", ticks, next, sep)
		}
		sep = next
	}

	// Outside the influence radius with zero friction, velocities freeze.
	before := append([]Particle(nil), e.Particles()...)
	for i := 0; i < 3; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for i, p := range e.Particles() {
		if p.Vel != before[i].Vel {
			t.Errorf("particle %d vel changed after stabilizing: %v -> %v", i, before[i].Vel, p.Vel)
		}
	}
}

func TestStepOutputFinite(t *testing.T) {
	spec := TableSpec{
		Kinds: 6, AttractMean: 0.02, AttractStd: 0.04,
		RepelMin: 0, RepelMax: 30, InfluenceMin: 30, InfluenceMax: 100,
		Friction: 0.01, Wrap: true,
	}
	e := NewEngine(Options{Width: 1600, Height: 900, Seed: 7})
	defer e.Close()

	table, err := GenerateTable(spec, e.rng)
	if err != nil {
		t.Fatalf("GenerateTable: %v", err)
	}
	if err := e.Seed(spec.Kinds, 200, table); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	for i := 0; i < 50; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for i, p := range e.Particles() {
		for _, v := range []float32{p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y} {
			if !finite(v) {
				t.Fatalf("particle %d has non-finite state: %+v", i, p)
			}
		}
		if p.Pos.X < -1 || p.Pos.X > 1 || p.Pos.Y < -1 || p.Pos.Y > 1 {
			t.Fatalf("particle %d left the domain: %+v", i, p)
		}
	}
}

func TestSettingsApplyAtTickBoundary(t *testing.T) {
	table := validTable(2, 0.1, 10, 30, 0.05)
	ps := []Particle{
		{Pos: Vec2{-0.9, 0}, Vel: Vec2{1, 0}, Kind: 0},
		{Pos: Vec2{0.9, 0}, Vel: Vec2{-1, 0}, Kind: 1},
	}
	e := newTestEngine(t, 200, 200, table, ps)
	defer e.Close()

	if err := e.SetFriction(0.5); err != nil {
		t.Fatalf("SetFriction: %v", err)
	}

	// Staged, not yet active.
	if got := e.Table().Friction; got != 0.05 {
		t.Errorf("friction before tick boundary = %v, want 0.05", got)
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if got := e.Table().Friction; got != 0.5 {
		t.Errorf("friction after tick boundary = %v, want 0.5", got)
	}
	// The tick itself already ran with the staged value.
	if got := e.Particles()[0].Vel.X; got != 0.5 {
		t.Errorf("vel.X = %v, want 0.5 (damped by staged friction)", got)
	}
}

func TestStagedEditsCompose(t *testing.T) {
	table := validTable(3, 0, 10, 30, 0)
	ps := []Particle{{Pos: Vec2{0, 0}, Kind: 0}}
	e := newTestEngine(t, 200, 200, table, ps)
	defer e.Close()

	// Two staged edits before one tick must both survive.
	if err := e.SetAttraction(0, 1, 0.7); err != nil {
		t.Fatalf("SetAttraction: %v", err)
	}
	if err := e.SetWrap(true); err != nil {
		t.Fatalf("SetWrap: %v", err)
	}
	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	got := e.Table()
	if a, _ := got.AttractionAt(0, 1); a != 0.7 {
		t.Errorf("attraction(0,1) = %v, want 0.7", a)
	}
	if !got.Wrap {
		t.Error("wrap flag lost by composed staging")
	}
}

func TestInvalidUpdateLeavesStateUnchanged(t *testing.T) {
	table := validTable(2, 0, 10, 30, 0.05)
	ps := []Particle{{Pos: Vec2{0, 0}, Kind: 0}}
	e := newTestEngine(t, 200, 200, table, ps)
	defer e.Close()

	if err := e.SetFriction(1.5); err == nil {
		t.Fatal("expected error for friction outside [0,1)")
	}
	if err := e.SetProps(0, 1, SymmetricProps{RepelDistance: 40, InfluenceRadius: 30}); err == nil {
		t.Fatal("expected error for repel >= influence")
	}

	bad := validTable(3, 0, 10, 30, 0.05)
	if err := e.SetRuleTable(bad); err == nil {
		t.Fatal("expected error for kind count change")
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := e.Table().Friction; got != 0.05 {
		t.Errorf("friction = %v after rejected updates, want 0.05", got)
	}
}

func TestSetRuleTableIdempotent(t *testing.T) {
	base := validTable(2, 0.1, 10, 30, 0.02)
	next := validTable(2, -0.05, 12, 40, 0.1)
	ps := []Particle{
		{Pos: Vec2{-0.1, 0}, Vel: Vec2{0.5, 0}, Kind: 0},
		{Pos: Vec2{0.1, 0.05}, Vel: Vec2{0, -0.5}, Kind: 1},
	}

	run := func(applyTwice bool) []Particle {
		e := newTestEngine(t, 400, 300, base, ps)
		defer e.Close()
		if err := e.SetRuleTable(next); err != nil {
			t.Fatalf("SetRuleTable: %v", err)
		}
		if applyTwice {
			if err := e.SetRuleTable(next); err != nil {
				t.Fatalf("SetRuleTable: %v", err)
			}
		}
		for i := 0; i < 5; i++ {
			if err := e.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		return append([]Particle(nil), e.Particles()...)
	}

	once := run(false)
	twice := run(true)
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("particle %d diverged: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestSeedValidation(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 200, Seed: 1})
	defer e.Close()
	table := validTable(3, 0, 10, 30, 0.05)

	if err := e.Seed(4, 100, table); err == nil {
		t.Error("expected error for kind count mismatch")
	}
	if err := e.Seed(3, 0, table); err == nil {
		t.Error("expected error for zero particles")
	}
	bad := table.Clone()
	bad.Friction = 2
	if err := e.Seed(3, 100, bad); err == nil {
		t.Error("expected error for invalid table")
	}
	if err := e.Step(); err == nil {
		t.Error("expected error stepping an unseeded engine")
	}

	if err := e.Seed(3, 100, table); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	for i, p := range e.Particles() {
		if int(p.Kind) >= 3 {
			t.Fatalf("particle %d kind %d out of range", i, p.Kind)
		}
		if p.Pos.X < -0.5 || p.Pos.X > 0.5 || p.Pos.Y < -0.5 || p.Pos.Y > 0.5 {
			t.Fatalf("particle %d seeded outside central region: %+v", i, p.Pos)
		}
	}

	if err := e.LoadParticles([]Particle{{Kind: 3}}); err == nil {
		t.Error("expected error for particle kind out of table range")
	}
}
