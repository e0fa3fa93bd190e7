package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Options configures a new Engine.
type Options struct {
	// Width, Height are the viewport dimensions in pixels. Interaction
	// radii are pixel-scaled, so these set the physical size of the domain.
	Width, Height float32

	// Backend executes ticks. nil selects a CPU pool over all cores.
	Backend Backend

	// Seed for particle and table randomization. 0 uses the current time.
	Seed int64

	// Layout selects the initial particle placement.
	Layout Layout
}

// Engine owns the simulation state and advances it one tick per Step call.
//
// All configuration changes (rule table, individual settings, viewport
// size) are staged and applied at the next tick boundary, so every particle
// within a tick sees the same rules. The front buffer returned by Particles
// always reflects a fully completed tick.
type Engine struct {
	backend Backend
	rng     *rand.Rand
	layout  Layout

	table *RuleTable // active table (engine-owned copy)
	rules *Snapshot  // frozen form of table, read by backends

	front, back   []Particle
	width, height float32
	tick          uint64

	mu            sync.Mutex
	pendingTable  *RuleTable
	pendingW      float32
	pendingH      float32
	pendingResize bool
}

// NewEngine creates an engine with no particles. Seed must be called before
// the first Step.
func NewEngine(opts Options) *Engine {
	backend := opts.Backend
	if backend == nil {
		backend = NewCPUBackend(0)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		backend: backend,
		rng:     rand.New(rand.NewSource(seed)),
		layout:  opts.Layout,
		width:   opts.Width,
		height:  opts.Height,
	}
}

// Backend returns the name of the active step backend.
func (e *Engine) Backend() string { return e.backend.Name() }

// Tick returns the number of completed ticks since the last Seed.
func (e *Engine) Tick() uint64 { return e.tick }

// Kinds returns the active kind count, 0 before seeding.
func (e *Engine) Kinds() int {
	if e.table == nil {
		return 0
	}
	return e.table.Kinds
}

// Table returns a copy of the active rule table.
func (e *Engine) Table() *RuleTable {
	if e.table == nil {
		return nil
	}
	return e.table.Clone()
}

// Seed validates the table, adopts a copy of it, and populates the particle
// buffers with a fresh random population. Any staged changes are dropped.
// On error the previous simulation state is left unchanged.
func (e *Engine) Seed(kinds, particles int, table *RuleTable) error {
	if table == nil {
		return fmt.Errorf("sim: seed requires a rule table")
	}
	if table.Kinds != kinds {
		return fmt.Errorf("sim: kind count %d does not match table kinds %d", kinds, table.Kinds)
	}
	if err := table.Validate(); err != nil {
		return err
	}
	if particles < 1 {
		return fmt.Errorf("sim: particle count %d must be positive", particles)
	}

	e.mu.Lock()
	e.pendingTable = nil
	e.mu.Unlock()

	e.table = table.Clone()
	e.rules = e.table.freeze()
	e.front = make([]Particle, particles)
	e.back = make([]Particle, particles)
	e.tick = 0

	generate(e.front, kinds, e.layout, e.rng)
	return nil
}

// RandomizeParticles re-rolls every particle's position, velocity, and kind
// while keeping the active rule table.
func (e *Engine) RandomizeParticles() {
	if e.table == nil {
		return
	}
	generate(e.front, e.table.Kinds, e.layout, e.rng)
	e.tick = 0
}

// LoadParticles replaces the particle population with the given state.
// Kinds must be valid for the active table.
func (e *Engine) LoadParticles(ps []Particle) error {
	if e.table == nil {
		return fmt.Errorf("sim: not seeded")
	}
	if len(ps) == 0 {
		return fmt.Errorf("sim: empty particle set")
	}
	for i, p := range ps {
		if int(p.Kind) >= e.table.Kinds {
			return fmt.Errorf("sim: particle %d kind %d out of range [0, %d)", i, p.Kind, e.table.Kinds)
		}
	}
	e.front = append([]Particle(nil), ps...)
	e.back = make([]Particle, len(ps))
	return nil
}

// Particles returns the front buffer: the state after the last completed
// tick. The slice is read-only and only valid until the next Step call.
func (e *Engine) Particles() []Particle {
	return e.front
}

// Step advances the simulation by exactly one tick. Staged configuration
// changes take effect at the start of the tick.
func (e *Engine) Step() error {
	if e.table == nil {
		return fmt.Errorf("sim: not seeded")
	}

	e.applyPending()

	if err := e.backend.Step(e.back, e.front, e.rules, e.width, e.height); err != nil {
		return fmt.Errorf("sim: %s backend step: %w", e.backend.Name(), err)
	}

	e.front, e.back = e.back, e.front
	e.tick++
	return nil
}

// applyPending swaps in any staged rule table or viewport size. Called only
// between ticks, never while a backend is running.
func (e *Engine) applyPending() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pendingTable != nil {
		e.table = e.pendingTable
		e.rules = e.table.freeze()
		e.pendingTable = nil
	}
	if e.pendingResize {
		e.width, e.height = e.pendingW, e.pendingH
		e.pendingResize = false
	}
}

// SetRuleTable stages a full replacement table, applied at the next tick
// boundary. The table must validate and keep the active kind count (kinds
// only change through Seed, since live particles index into the table).
func (e *Engine) SetRuleTable(table *RuleTable) error {
	if e.table == nil {
		return fmt.Errorf("sim: not seeded")
	}
	if table.Kinds != e.table.Kinds {
		return fmt.Errorf("sim: cannot change kind count from %d to %d without reseeding",
			e.table.Kinds, table.Kinds)
	}
	if err := table.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.pendingTable = table.Clone()
	e.mu.Unlock()
	return nil
}

// stage runs edit on a copy of the most recently staged (or active) table,
// validates the result, and stages it. Failed edits leave no trace.
func (e *Engine) stage(edit func(*RuleTable) error) error {
	if e.table == nil {
		return fmt.Errorf("sim: not seeded")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	base := e.pendingTable
	if base == nil {
		base = e.table
	}
	next := base.Clone()
	if err := edit(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	e.pendingTable = next
	return nil
}

// SetFriction stages a new friction value.
func (e *Engine) SetFriction(friction float32) error {
	return e.stage(func(t *RuleTable) error {
		t.Friction = friction
		return nil
	})
}

// SetWrap stages the boundary mode: toroidal when true, reflecting when
// false.
func (e *Engine) SetWrap(wrap bool) error {
	return e.stage(func(t *RuleTable) error {
		t.Wrap = wrap
		return nil
	})
}

// SetFlatForce stages the attraction-band profile: constant when true,
// triangular when false.
func (e *Engine) SetFlatForce(flat bool) error {
	return e.stage(func(t *RuleTable) error {
		t.FlatForce = flat
		return nil
	})
}

// SetAttraction stages one attraction entry.
func (e *Engine) SetAttraction(a, b int, v float32) error {
	return e.stage(func(t *RuleTable) error {
		return t.SetAttraction(a, b, v)
	})
}

// SetProps stages the symmetric properties of one kind pair.
func (e *Engine) SetProps(a, b int, p SymmetricProps) error {
	return e.stage(func(t *RuleTable) error {
		return t.SetProps(a, b, p)
	})
}

// Resize stages a new viewport size, applied at the next tick boundary.
func (e *Engine) Resize(width, height float32) {
	e.mu.Lock()
	e.pendingW, e.pendingH = width, height
	e.pendingResize = true
	e.mu.Unlock()
}

// Size returns the active viewport dimensions.
func (e *Engine) Size() (float32, float32) {
	return e.width, e.height
}

// Close releases the backend. The engine must not be stepped afterwards.
func (e *Engine) Close() {
	e.backend.Close()
}
