//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher delivers edges from actual hardware using the Linux GPIO
// character device. Both lines are requested with pull-ups and falling-edge
// detection, matching how the reed switches are wired.
type RealWatcher struct {
	pinSpeed int
	pinDir   int
	micros   func() uint64

	// mu guards the line handles: event handlers can fire before
	// RequestLine has returned the handle to Start.
	mu        sync.Mutex
	chip      *gpiocdev.Chip
	speedLine *gpiocdev.Line
	dirLine   *gpiocdev.Line
}

// NewRealWatcher creates a watcher for the given BCM pins. Timestamps are
// taken from the supplied microsecond clock so edge times and decode-cycle
// times share one clock domain.
func NewRealWatcher(pinSpeed, pinDir int, micros func() uint64) *RealWatcher {
	return &RealWatcher{
		pinSpeed: pinSpeed,
		pinDir:   pinDir,
		micros:   micros,
	}
}

// Start requests both lines with falling-edge detection and begins
// delivering edges to the handler.
func (w *RealWatcher) Start(h Handler) error {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return fmt.Errorf("open gpio chip: %w", err)
	}

	speedLine, err := chip.RequestLine(w.pinSpeed,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			w.handleEdge(LineSpeed, h)
		}))
	if err != nil {
		chip.Close()
		return fmt.Errorf("request speed pin %d: %w", w.pinSpeed, err)
	}

	dirLine, err := chip.RequestLine(w.pinDir,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			w.handleEdge(LineDir, h)
		}))
	if err != nil {
		speedLine.Close()
		chip.Close()
		return fmt.Errorf("request dir pin %d: %w", w.pinDir, err)
	}

	w.mu.Lock()
	w.chip = chip
	w.speedLine = speedLine
	w.dirLine = dirLine
	w.mu.Unlock()

	return nil
}

// handleEdge confirms the line is still low before accepting the edge. The
// reed switches bounce, and an event can be queued while the contact has
// already sprung back high.
func (w *RealWatcher) handleEdge(which Line, h Handler) {
	now := w.micros()

	w.mu.Lock()
	line := w.speedLine
	if which == LineDir {
		line = w.dirLine
	}
	w.mu.Unlock()

	if line == nil {
		return
	}
	v, err := line.Value()
	if err != nil || v != 0 {
		return
	}
	h(which, now)
}

// Close releases GPIO resources.
func (w *RealWatcher) Close() error {
	w.mu.Lock()
	speedLine, dirLine, chip := w.speedLine, w.dirLine, w.chip
	w.speedLine, w.dirLine, w.chip = nil, nil, nil
	w.mu.Unlock()

	var errs []error
	if speedLine != nil {
		if err := speedLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close speed line: %w", err))
		}
	}
	if dirLine != nil {
		if err := dirLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dir line: %w", err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
