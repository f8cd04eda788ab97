package gpio

import (
	"errors"
	"testing"
)

func TestFakeWatcherDeliversPulses(t *testing.T) {
	f := NewFakeWatcher()

	var gotLine Line
	var gotMicros uint64
	calls := 0

	err := f.Start(func(line Line, micros uint64) {
		gotLine = line
		gotMicros = micros
		calls++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Started {
		t.Error("Started should be true after Start")
	}

	if err := f.Pulse(LineSpeed, 123456); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if gotLine != LineSpeed {
		t.Errorf("line: got %v, want %v", gotLine, LineSpeed)
	}
	if gotMicros != 123456 {
		t.Errorf("micros: got %d, want 123456", gotMicros)
	}

	if err := f.Pulse(LineDir, 200000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLine != LineDir {
		t.Errorf("line: got %v, want %v", gotLine, LineDir)
	}
}

func TestFakeWatcherPulseBeforeStart(t *testing.T) {
	f := NewFakeWatcher()

	if err := f.Pulse(LineSpeed, 1000); err == nil {
		t.Error("expected error when pulsing before Start")
	}
}

func TestFakeWatcherStartError(t *testing.T) {
	f := NewFakeWatcher()
	f.StartError = errors.New("simulated error")

	err := f.Start(func(Line, uint64) {})
	if err == nil {
		t.Error("expected error to be returned")
	}
	if f.Started {
		t.Error("Started should remain false on error")
	}
}

func TestFakeWatcherClose(t *testing.T) {
	f := NewFakeWatcher()
	f.Start(func(Line, uint64) {})

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("Closed should be true after Close")
	}

	if err := f.Pulse(LineSpeed, 1000); err == nil {
		t.Error("expected error when pulsing after Close")
	}
}

func TestLineString(t *testing.T) {
	if LineSpeed.String() != "speed" {
		t.Errorf("LineSpeed: got %q", LineSpeed.String())
	}
	if LineDir.String() != "dir" {
		t.Errorf("LineDir: got %q", LineDir.String())
	}
}
