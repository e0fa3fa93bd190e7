// Package sim implements the particle-life simulation core: the interaction
// rule table, the double-buffered particle state, the force kernel, and the
// CPU step backend. Positions live in clip space ([-1,1] on both axes);
// velocities and interaction radii live in pixel space and are rescaled by
// the viewport size each tick.
package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// MaxKinds is the largest supported kind count. The GPU rule buffer is
// sized for this many kinds, so tables above it are rejected at validation.
const MaxKinds = 20

// SymmetricProps holds the per-pair interaction distances. They are shared
// by both orderings of a kind pair and stored once, triangularly indexed.
type SymmetricProps struct {
	// RepelDistance is the distance below which particles unconditionally
	// repel each other.
	RepelDistance float32
	// InfluenceRadius is the distance above which particles have no
	// influence on each other.
	InfluenceRadius float32
}

// RuleTable is the full interaction configuration for a simulation.
// It is plain data; the engine freezes a validated copy into an immutable
// snapshot at each tick boundary, so a table handed to the engine can be
// mutated freely by its owner afterwards.
type RuleTable struct {
	Kinds     int
	Friction  float32
	Wrap      bool
	FlatForce bool

	// Attraction is row-major [Kinds*Kinds]: Attraction[a*Kinds+b] is the
	// attraction of kind a toward kind b. No symmetry is required.
	Attraction []float32

	// Symmetric has PairCount(Kinds) entries, indexed by PairIndex.
	Symmetric []SymmetricProps
}

// NewRuleTable allocates a zeroed table for the given kind count.
func NewRuleTable(kinds int) *RuleTable {
	return &RuleTable{
		Kinds:      kinds,
		Attraction: make([]float32, kinds*kinds),
		Symmetric:  make([]SymmetricProps, PairCount(kinds)),
	}
}

// Validate checks the table invariants: kind count within bounds, friction
// in [0,1), repel distance strictly inside the influence radius for every
// pair, and all values finite.
func (t *RuleTable) Validate() error {
	if t.Kinds < 1 || t.Kinds > MaxKinds {
		return fmt.Errorf("rules: kind count %d outside [1, %d]", t.Kinds, MaxKinds)
	}
	if len(t.Attraction) != t.Kinds*t.Kinds {
		return fmt.Errorf("rules: attraction table has %d entries, want %d", len(t.Attraction), t.Kinds*t.Kinds)
	}
	if len(t.Symmetric) != PairCount(t.Kinds) {
		return fmt.Errorf("rules: symmetric table has %d entries, want %d", len(t.Symmetric), PairCount(t.Kinds))
	}
	if !finite(t.Friction) || t.Friction < 0 || t.Friction >= 1 {
		return fmt.Errorf("rules: friction %v outside [0,1)", t.Friction)
	}
	for i, a := range t.Attraction {
		if !finite(a) {
			return fmt.Errorf("rules: attraction[%d] is not finite", i)
		}
	}
	for i, p := range t.Symmetric {
		if !finite(p.RepelDistance) || !finite(p.InfluenceRadius) {
			return fmt.Errorf("rules: symmetric[%d] is not finite", i)
		}
		if p.RepelDistance < 0 {
			return fmt.Errorf("rules: symmetric[%d] repel distance %v is negative", i, p.RepelDistance)
		}
		if p.RepelDistance >= p.InfluenceRadius {
			return fmt.Errorf("rules: symmetric[%d] repel distance %v >= influence radius %v",
				i, p.RepelDistance, p.InfluenceRadius)
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *RuleTable) Clone() *RuleTable {
	c := *t
	c.Attraction = append([]float32(nil), t.Attraction...)
	c.Symmetric = append([]SymmetricProps(nil), t.Symmetric...)
	return &c
}

// AttractionAt returns the attraction of kind a toward kind b.
func (t *RuleTable) AttractionAt(a, b int) (float32, error) {
	if err := t.checkKinds(a, b); err != nil {
		return 0, err
	}
	return t.Attraction[a*t.Kinds+b], nil
}

// SetAttraction sets the attraction of kind a toward kind b.
func (t *RuleTable) SetAttraction(a, b int, v float32) error {
	if err := t.checkKinds(a, b); err != nil {
		return err
	}
	if !finite(v) {
		return fmt.Errorf("rules: attraction value %v is not finite", v)
	}
	t.Attraction[a*t.Kinds+b] = v
	return nil
}

// PropsAt returns the symmetric properties of the unordered pair (a, b).
func (t *RuleTable) PropsAt(a, b int) (SymmetricProps, error) {
	if err := t.checkKinds(a, b); err != nil {
		return SymmetricProps{}, err
	}
	return t.Symmetric[PairIndex(a, b)], nil
}

// SetProps sets the symmetric properties of the unordered pair (a, b).
func (t *RuleTable) SetProps(a, b int, p SymmetricProps) error {
	if err := t.checkKinds(a, b); err != nil {
		return err
	}
	if p.RepelDistance < 0 || p.RepelDistance >= p.InfluenceRadius {
		return fmt.Errorf("rules: repel distance %v must be in [0, influence radius %v)",
			p.RepelDistance, p.InfluenceRadius)
	}
	t.Symmetric[PairIndex(a, b)] = p
	return nil
}

func (t *RuleTable) checkKinds(a, b int) error {
	if a < 0 || a >= t.Kinds || b < 0 || b >= t.Kinds {
		return fmt.Errorf("rules: kind pair (%d, %d) out of range [0, %d)", a, b, t.Kinds)
	}
	return nil
}

// Snapshot is the immutable, flattened form of a RuleTable consumed by the
// step backends. Influence radii are additionally stored squared so the
// cutoff test never takes a square root; every backend compares dist^2
// against InfluenceSq, never dist against InfluenceRadius.
type Snapshot struct {
	Kinds     int
	Friction  float32
	Wrap      bool
	FlatForce bool

	Attraction  []float32 // Kinds*Kinds, row-major
	Repel       []float32 // PairCount(Kinds)
	Influence   []float32 // PairCount(Kinds)
	InfluenceSq []float32 // PairCount(Kinds)
}

// freeze compiles a validated table into a Snapshot. The caller must have
// run Validate first.
func (t *RuleTable) freeze() *Snapshot {
	s := &Snapshot{
		Kinds:       t.Kinds,
		Friction:    t.Friction,
		Wrap:        t.Wrap,
		FlatForce:   t.FlatForce,
		Attraction:  append([]float32(nil), t.Attraction...),
		Repel:       make([]float32, len(t.Symmetric)),
		Influence:   make([]float32, len(t.Symmetric)),
		InfluenceSq: make([]float32, len(t.Symmetric)),
	}
	for i, p := range t.Symmetric {
		s.Repel[i] = p.RepelDistance
		s.Influence[i] = p.InfluenceRadius
		s.InfluenceSq[i] = p.InfluenceRadius * p.InfluenceRadius
	}
	return s
}

// TableSpec describes the distributions a random rule table is drawn from.
// The presets in config/defaults.yaml are TableSpecs in YAML form.
type TableSpec struct {
	Kinds int

	AttractMean float32
	AttractStd  float32

	RepelMin float32
	RepelMax float32

	InfluenceMin float32
	InfluenceMax float32

	Friction  float32
	FlatForce bool
	Wrap      bool
}

// GenerateTable draws a rule table from the spec's distributions.
// Self-attraction is forced negative so same-kind clumps stay loose, the
// repel distance of a kind with itself is pinned to the particle diameter,
// and influence radii are raised to keep every pair's repulsion zone
// strictly inside its influence zone.
func GenerateTable(spec TableSpec, rng *rand.Rand) (*RuleTable, error) {
	if spec.Kinds < 1 || spec.Kinds > MaxKinds {
		return nil, fmt.Errorf("rules: kind count %d outside [1, %d]", spec.Kinds, MaxKinds)
	}

	t := NewRuleTable(spec.Kinds)
	t.Friction = spec.Friction
	t.FlatForce = spec.FlatForce
	t.Wrap = spec.Wrap

	normal := func() float32 {
		return spec.AttractMean + spec.AttractStd*float32(rng.NormFloat64())
	}
	uniform := func(lo, hi float32) float32 {
		return lo + (hi-lo)*rng.Float32()
	}

	for i := 0; i < spec.Kinds; i++ {
		for j := 0; j < spec.Kinds; j++ {
			attr := normal()
			if i == j {
				attr = -abs32(attr)
			}
			t.Attraction[i*spec.Kinds+j] = attr

			if j > i {
				continue
			}
			repel := Diameter
			if i != j {
				repel = max32(uniform(spec.RepelMin, spec.RepelMax), Diameter)
			}
			influence := uniform(spec.InfluenceMin, spec.InfluenceMax)
			if influence <= repel {
				influence = repel + 1
			}
			t.Symmetric[PairIndex(i, j)] = SymmetricProps{
				RepelDistance:   repel,
				InfluenceRadius: influence,
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
