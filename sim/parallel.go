package sim

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum particle count to use the worker pool.
// Below this, single-threaded is faster than the dispatch overhead.
const parallelThreshold = 64

// workChunk is a contiguous range of particle indices for one worker.
type workChunk struct {
	start, end int
}

// CPUBackend steps the simulation on a pool of persistent worker
// goroutines. Each worker gets a contiguous chunk of particle indices and
// writes only its own output slots; the only synchronization is the join
// after all chunks complete, before the engine swaps buffers.
type CPUBackend struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	// Tick-scoped state, set before dispatch and read-only to workers.
	dst, src      []Particle
	rules         *Snapshot
	width, height float32
}

// NewCPUBackend creates a CPU backend with the given worker count.
// workers <= 0 uses GOMAXPROCS.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{numWorkers: workers}
}

// Name implements Backend.
func (c *CPUBackend) Name() string { return "cpu" }

// Step implements Backend.
func (c *CPUBackend) Step(dst, src []Particle, rules *Snapshot, width, height float32) error {
	n := len(src)
	if n == 0 {
		return nil
	}

	if n < parallelThreshold || c.numWorkers == 1 {
		stepRange(dst, src, rules, width, height, 0, n)
		return nil
	}

	c.dst, c.src = dst, src
	c.rules = rules
	c.width, c.height = width, height

	if !c.running {
		c.startWorkers()
	}

	chunkSize := (n + c.numWorkers - 1) / c.numWorkers
	dispatched := 0
	for w := 0; w < c.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		c.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	// Join barrier: the tick is complete only when every chunk is done.
	for i := 0; i < dispatched; i++ {
		<-c.doneChan
	}

	c.dst, c.src, c.rules = nil, nil, nil
	return nil
}

// startWorkers launches the persistent worker goroutines.
func (c *CPUBackend) startWorkers() {
	c.workChan = make(chan workChunk, c.numWorkers)
	c.doneChan = make(chan struct{}, c.numWorkers)
	c.stopChan = make(chan struct{})
	c.running = true

	for i := 0; i < c.numWorkers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// worker processes chunks until stopped. A chunk in progress always runs to
// completion; Close only interrupts the pool between ticks.
func (c *CPUBackend) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopChan:
			return
		case chunk, ok := <-c.workChan:
			if !ok {
				return
			}
			stepRange(c.dst, c.src, c.rules, c.width, c.height, chunk.start, chunk.end)
			c.doneChan <- struct{}{}
		}
	}
}

// Close implements Backend.
func (c *CPUBackend) Close() {
	if !c.running {
		return
	}
	close(c.stopChan)
	c.wg.Wait()
	close(c.workChan)
	close(c.doneChan)
	c.running = false
}
