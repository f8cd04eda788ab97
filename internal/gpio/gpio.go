// Package gpio provides falling-edge capture for the two instrument lines
// with hardware abstraction. The real implementation uses the Linux GPIO
// character device; the fake implementation drives scripted edges for tests.
package gpio

// Line identifies one of the two instrument inputs.
type Line int

const (
	// LineSpeed is the anemometer reed switch (one pulse per rotation).
	LineSpeed Line = iota
	// LineDir is the wind vane reed switch.
	LineDir
)

func (l Line) String() string {
	if l == LineSpeed {
		return "speed"
	}
	return "dir"
}

// Handler receives an accepted falling edge and its timestamp on the
// process microsecond clock. Handlers run on the watcher's event goroutines
// and must complete quickly without blocking.
type Handler func(line Line, micros uint64)

// Watcher delivers falling-edge events from the two instrument lines.
type Watcher interface {
	// Start begins delivering edges to the handler.
	Start(h Handler) error

	// Close stops event delivery and releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering).
const (
	DefaultPinSpeed = 17 // anemometer
	DefaultPinDir   = 27 // wind vane
)
