package logic

import "sync"

// Capture records timestamped falling edges from the two instrument lines.
//
// Edge handlers run on the GPIO event goroutines while Snapshot is called
// from the decode loop. The mutex bounds the shared access to four word
// copies, the same shape as the interrupt-disabled window in the instrument
// firmware this decoder descends from.
type Capture struct {
	mu         sync.Mutex
	speedPulse uint64 // µs timestamp of last accepted speed edge
	dirPulse   uint64 // µs timestamp of last accepted direction edge
	speedTime  uint64 // µs between the last two accepted speed edges
	dirTime    uint64 // µs from previous speed edge to the direction edge
	speedEdges uint64 // accepted edge totals, diagnostics only
	dirEdges   uint64
}

// NewCapture creates a zeroed Capture. The first cycle after startup reads
// zero intervals and is handled by the decoder's stall path.
func NewCapture() *Capture {
	return &Capture{}
}

// SpeedEdge records a falling edge on the speed line at now (µs).
// Edges inside the debounce window of the previous accepted edge are dropped.
func (c *Capture) SpeedEdge(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now-c.speedPulse <= Debounce {
		return
	}

	c.speedTime = now - c.speedPulse
	// The direction pulse belongs to this rotation only if it arrived at or
	// after the previous speed pulse.
	if c.dirPulse >= c.speedPulse {
		c.dirTime = c.dirPulse - c.speedPulse
	}
	c.speedPulse = now
	c.speedEdges++
}

// DirEdge records a falling edge on the direction line at now (µs).
// Only the timestamp is captured; interval arithmetic happens on the next
// speed edge.
func (c *Capture) DirEdge(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now-c.dirPulse <= Debounce {
		return
	}

	c.dirPulse = now
	c.dirEdges++
}

// Snapshot returns a consistent copy of the pulse state. The lock guarantees
// the four fields belong to the same moment — no torn reads when an edge
// lands mid-cycle.
func (c *Capture) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		SpeedPulse: c.speedPulse,
		DirPulse:   c.dirPulse,
		SpeedTime:  c.speedTime,
		DirTime:    c.dirTime,
	}
	c.mu.Unlock()
	return s
}

// EdgeCounts returns the accepted edge totals for both lines.
func (c *Capture) EdgeCounts() (speed, dir uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speedEdges, c.dirEdges
}
