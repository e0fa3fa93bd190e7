package sim

// Backend executes one tick of the simulation. Implementations read the
// whole src buffer and write every dst slot; they never touch any other
// shared state, so the engine can swap buffer roles the moment Step
// returns. A Backend is not safe for concurrent Step calls.
type Backend interface {
	// Name identifies the backend ("cpu", "gpu") for logs and callers that
	// need to know which numeric path is active.
	Name() string

	// Step computes dst[i] from src and the rule snapshot for every i.
	// len(dst) == len(src) is the caller's responsibility.
	Step(dst, src []Particle, rules *Snapshot, width, height float32) error

	// Close releases backend resources. No Step may be in flight.
	Close()
}
