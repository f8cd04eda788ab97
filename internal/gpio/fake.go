package gpio

import "errors"

// FakeWatcher is a test double that lets tests inject timestamped edges.
type FakeWatcher struct {
	// StartError, if set, will be returned by Start.
	StartError error

	// Started tracks if Start was called.
	Started bool

	// Closed tracks if Close was called.
	Closed bool

	handler Handler
}

// NewFakeWatcher creates a FakeWatcher.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{}
}

// Start records the handler for later Pulse calls.
func (f *FakeWatcher) Start(h Handler) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.handler = h
	f.Started = true
	return nil
}

// Close marks the watcher as closed and stops delivering pulses.
func (f *FakeWatcher) Close() error {
	f.Closed = true
	f.handler = nil
	return nil
}

// Pulse delivers one falling edge to the registered handler, synchronously.
func (f *FakeWatcher) Pulse(line Line, micros uint64) error {
	if f.handler == nil {
		return errors.New("fake watcher not started")
	}
	f.handler(line, micros)
	return nil
}
