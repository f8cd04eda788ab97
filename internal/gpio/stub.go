//go:build !linux

package gpio

import "errors"

// RealWatcher is not available on non-Linux platforms.
type RealWatcher struct{}

// NewRealWatcher returns a watcher whose Start always fails on non-Linux
// platforms.
func NewRealWatcher(pinSpeed, pinDir int, micros func() uint64) *RealWatcher {
	return &RealWatcher{}
}

// Start is not implemented on non-Linux platforms.
func (w *RealWatcher) Start(h Handler) error {
	return errors.New("gpio: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (w *RealWatcher) Close() error {
	return nil
}
