// Package gpu implements the compute-shader step backend on raylib's rlgl
// layer. It requires an OpenGL 4.3 context, so a Backend can only be created
// after the window is initialized; headless runs use the CPU backend.
package gpu

import (
	_ "embed"
	"fmt"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/sim"
)

//go:embed step.glsl
var stepSource string

// rlgl does not export these GL enums.
const (
	glComputeShader = 0x91B9
	glDynamicCopy   = 0x88EA
)

// workgroupSize matches local_size_x in step.glsl.
const workgroupSize = 100

const (
	particleStride = int(unsafe.Sizeof(sim.Particle{}))

	maxAttraction = sim.MaxKinds * sim.MaxKinds
	maxPairs      = sim.MaxKinds * (sim.MaxKinds + 1) / 2
)

const (
	flagFlatForce = 1 << 0
	flagWrap      = 1 << 1
)

// gpuRules is the std430 mirror of the RuleBuffer block in step.glsl.
// Scalars and float arrays are all 4-byte aligned, so the Go layout matches
// the shader layout byte for byte.
type gpuRules struct {
	Friction float32
	Flags    uint32
	Width    float32
	Height   float32
	Kinds    uint32
	Count    uint32

	Attraction  [maxAttraction]float32
	Repel       [maxPairs]float32
	Influence   [maxPairs]float32
	InfluenceSq [maxPairs]float32
}

// Backend steps the simulation in a compute shader. Particles are uploaded
// to a source SSBO, one invocation per particle writes the destination SSBO,
// and the result is read back into the engine's buffer. It implements
// sim.Backend.
type Backend struct {
	program  uint32
	srcSSBO  uint32
	dstSSBO  uint32
	ruleSSBO uint32

	capacity int

	// Upload cache: the rule buffer is rewritten only when the snapshot or
	// viewport changes, not every tick.
	lastRules *sim.Snapshot
	lastW     float32
	lastH     float32
	lastCount int
}

// New compiles the step shader and allocates the rule buffer. It fails when
// the driver cannot compile or link compute shaders, which callers should
// treat as "use the CPU backend".
func New() (*Backend, error) {
	shader := rl.CompileShader(stepSource, glComputeShader)
	if shader == 0 {
		return nil, fmt.Errorf("gpu: compute shader compilation failed (OpenGL 4.3 required)")
	}
	program := rl.LoadComputeShaderProgram(shader)
	if program == 0 {
		return nil, fmt.Errorf("gpu: compute shader program link failed")
	}

	b := &Backend{program: program}
	b.ruleSSBO = rl.LoadShaderBuffer(uint32(unsafe.Sizeof(gpuRules{})), nil, glDynamicCopy)
	if b.ruleSSBO == 0 {
		rl.UnloadShaderProgram(program)
		return nil, fmt.Errorf("gpu: rule buffer allocation failed")
	}
	return b, nil
}

// Name implements sim.Backend.
func (b *Backend) Name() string { return "gpu" }

// Step implements sim.Backend.
func (b *Backend) Step(dst, src []sim.Particle, rules *sim.Snapshot, width, height float32) error {
	n := len(src)
	if n == 0 {
		return nil
	}
	if len(dst) != n {
		return fmt.Errorf("gpu: buffer length mismatch: dst %d, src %d", len(dst), n)
	}

	b.ensureParticleBuffers(n)

	byteLen := uint32(n * particleStride)
	rl.UpdateShaderBuffer(b.srcSSBO, unsafe.Pointer(&src[0]), byteLen, 0)

	if rules != b.lastRules || width != b.lastW || height != b.lastH || n != b.lastCount {
		b.uploadRules(rules, width, height, n)
	}

	rl.EnableShader(b.program)
	rl.BindShaderBuffer(b.srcSSBO, 0)
	rl.BindShaderBuffer(b.dstSSBO, 1)
	rl.BindShaderBuffer(b.ruleSSBO, 2)

	groups := uint32((n + workgroupSize - 1) / workgroupSize)
	rl.ComputeShaderDispatch(groups, 1, 1)
	rl.DisableShader()

	// ReadShaderBuffer blocks until the dispatch completes.
	rl.ReadShaderBuffer(b.dstSSBO, unsafe.Pointer(&dst[0]), byteLen, 0)
	return nil
}

// ensureParticleBuffers sizes the particle SSBOs for n particles, reusing
// them while the population fits.
func (b *Backend) ensureParticleBuffers(n int) {
	if n <= b.capacity && b.srcSSBO != 0 {
		return
	}
	if b.srcSSBO != 0 {
		rl.UnloadShaderBuffer(b.srcSSBO)
		rl.UnloadShaderBuffer(b.dstSSBO)
	}
	size := uint32(n * particleStride)
	b.srcSSBO = rl.LoadShaderBuffer(size, nil, glDynamicCopy)
	b.dstSSBO = rl.LoadShaderBuffer(size, nil, glDynamicCopy)
	b.capacity = n
}

// uploadRules flattens the snapshot into the fixed-size shader block. The
// compact Kinds-sized tables land at the front of the max-sized arrays; the
// shader indexes with the runtime kind count, so the tail is never read.
func (b *Backend) uploadRules(rules *sim.Snapshot, width, height float32, count int) {
	var r gpuRules
	r.Friction = rules.Friction
	if rules.FlatForce {
		r.Flags |= flagFlatForce
	}
	if rules.Wrap {
		r.Flags |= flagWrap
	}
	r.Width = width
	r.Height = height
	r.Kinds = uint32(rules.Kinds)
	r.Count = uint32(count)

	copy(r.Attraction[:], rules.Attraction)
	copy(r.Repel[:], rules.Repel)
	copy(r.Influence[:], rules.Influence)
	copy(r.InfluenceSq[:], rules.InfluenceSq)

	rl.UpdateShaderBuffer(b.ruleSSBO, unsafe.Pointer(&r), uint32(unsafe.Sizeof(r)), 0)

	b.lastRules = rules
	b.lastW, b.lastH = width, height
	b.lastCount = count
}

// Close implements sim.Backend.
func (b *Backend) Close() {
	if b.srcSSBO != 0 {
		rl.UnloadShaderBuffer(b.srcSSBO)
		rl.UnloadShaderBuffer(b.dstSSBO)
		b.srcSSBO, b.dstSSBO = 0, 0
	}
	if b.ruleSSBO != 0 {
		rl.UnloadShaderBuffer(b.ruleSSBO)
		b.ruleSSBO = 0
	}
	if b.program != 0 {
		rl.UnloadShaderProgram(b.program)
		b.program = 0
	}
}
