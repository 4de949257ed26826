package population

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Counter is a lock-free running float64 accumulator, for the population's
// numerosity-sum and fitness-mean counters when read concurrently by a
// telemetry stream while the engine keeps writing them (the design's
// concurrency model permits concurrent readers of population statistics
// alongside the single writer goroutine).
type Counter struct {
	val float64
}

// Read atomically loads the current value.
func (c *Counter) Read() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&c.val)))
	return math.Float64frombits(bits)
}

// Add atomically adds delta, retrying on contention. Single-writer callers
// (the case here) never contend, so this always succeeds on the first try;
// the CAS loop exists purely in case that assumption is relaxed later.
func (c *Counter) Add(delta float64) float64 {
	for {
		old := c.Read()
		next := old + delta
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&c.val)),
			math.Float64bits(old),
			math.Float64bits(next),
		) {
			return next
		}
	}
}
