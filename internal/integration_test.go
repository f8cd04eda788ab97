package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/wind-sensor/internal/gpio"
	"github.com/sweeney/wind-sensor/internal/logic"
	"github.com/sweeney/wind-sensor/internal/mqtt"
	"github.com/sweeney/wind-sensor/internal/status"
)

// wireCapture connects a fake watcher to a capture the same way main does.
func wireCapture(t *testing.T, watcher *gpio.FakeWatcher, capture *logic.Capture) {
	t.Helper()
	err := watcher.Start(func(line gpio.Line, micros uint64) {
		switch line {
		case gpio.LineSpeed:
			capture.SpeedEdge(micros)
		case gpio.LineDir:
			capture.DirEdge(micros)
		}
	})
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}
}

// TestIntegrationFullFlow drives scripted pulses through the capture and
// decoder and verifies the published readings, end to end with fakes.
func TestIntegrationFullFlow(t *testing.T) {
	watcher := gpio.NewFakeWatcher()
	capture := logic.NewCapture()
	wireCapture(t, watcher, capture)

	publisher := mqtt.NewFakePublisher()
	decoder := logic.NewDecoder()
	settings := logic.Settings{FilterGain: 0.25}
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Steady rotation: one speed pulse per 400 ms with the vane pulse 10 ms
	// into each window. Decodes to 286 cm/s with the vane at 351°.
	pulses := []struct {
		line   gpio.Line
		micros uint64
	}{
		{gpio.LineSpeed, 1000000},
		{gpio.LineDir, 1010000},
		{gpio.LineSpeed, 1400000},
		{gpio.LineDir, 1410000},
		{gpio.LineSpeed, 1800000},
		{gpio.LineDir, 1810000},
		{gpio.LineSpeed, 2200000},
	}
	for _, p := range pulses {
		if err := watcher.Pulse(p.line, p.micros); err != nil {
			t.Fatalf("pulse: %v", err)
		}
	}

	// Three decode cycles against the same snapshot: the smoothed direction
	// converges toward 351° from the zero start.
	cycleMicros := []uint64{2300000, 2500000, 2700000}
	for i, m := range cycleMicros {
		out := decoder.Cycle(capture.Snapshot(), m, settings)
		ts := startTime.Add(time.Duration(i) * 200 * time.Millisecond)
		if err := publisher.PublishReading(mqtt.Reading{Timestamp: ts, Output: out}); err != nil {
			t.Fatalf("cycle %d: publish error: %v", i, err)
		}
	}

	if len(publisher.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(publisher.Readings))
	}

	wantDirs := []int{358, 356, 355}
	for i, r := range publisher.Readings {
		if r.Output.Stalled {
			t.Errorf("reading %d: unexpected stall", i)
		}
		if r.Output.SpeedCmps != 286 {
			t.Errorf("reading %d: SpeedCmps got %d, want 286", i, r.Output.SpeedCmps)
		}
		if r.Output.DirectionDeg != wantDirs[i] {
			t.Errorf("reading %d: DirectionDeg got %d, want %d", i, r.Output.DirectionDeg, wantDirs[i])
		}
		if r.Output.RawDirectionDeg != 351 {
			t.Errorf("reading %d: RawDirectionDeg got %d, want 351", i, r.Output.RawDirectionDeg)
		}
		if r.Output.RotationRate != 250 {
			t.Errorf("reading %d: RotationRate got %d, want 250", i, r.Output.RotationRate)
		}
	}

	// Verify the JSON payloads parse and carry both unit systems.
	for i, payload := range publisher.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Fatalf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Wind.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Wind.SpeedMps != 2.86 {
			t.Errorf("payload %d: speed_mps got %v, want 2.86", i, parsed.Wind.SpeedMps)
		}
		if parsed.Wind.SpeedCmps != 286 {
			t.Errorf("payload %d: speed_cmps got %d, want 286", i, parsed.Wind.SpeedCmps)
		}
	}

	if counts := decoder.CountersSnapshot(); counts.Cycles != 3 {
		t.Errorf("Cycles: got %d, want 3", counts.Cycles)
	}
}

// TestIntegrationStallAndRecovery verifies stalled readings before the first
// rotation and a normal reading once pulses arrive.
func TestIntegrationStallAndRecovery(t *testing.T) {
	watcher := gpio.NewFakeWatcher()
	capture := logic.NewCapture()
	wireCapture(t, watcher, capture)

	publisher := mqtt.NewFakePublisher()
	decoder := logic.NewDecoder()
	settings := logic.Settings{FilterGain: 1.0}
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// No pulses yet: stalled.
	out := decoder.Cycle(capture.Snapshot(), 2000000, settings)
	publisher.PublishReading(mqtt.Reading{Timestamp: ts, Output: out})

	// Wind picks up: one full rotation.
	watcher.Pulse(gpio.LineSpeed, 2100000)
	watcher.Pulse(gpio.LineDir, 2110000)
	watcher.Pulse(gpio.LineSpeed, 2500000)

	out = decoder.Cycle(capture.Snapshot(), 2600000, settings)
	publisher.PublishReading(mqtt.Reading{Timestamp: ts.Add(200 * time.Millisecond), Output: out})

	if len(publisher.Readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(publisher.Readings))
	}
	if !publisher.Readings[0].Output.Stalled {
		t.Error("first reading should be stalled")
	}
	if publisher.Readings[0].Output.SpeedCmps != 0 {
		t.Errorf("stalled SpeedCmps: got %d, want 0", publisher.Readings[0].Output.SpeedCmps)
	}
	second := publisher.Readings[1].Output
	if second.Stalled {
		t.Error("second reading should not be stalled")
	}
	if second.SpeedCmps != 286 {
		t.Errorf("recovered SpeedCmps: got %d, want 286", second.SpeedCmps)
	}
	if second.DirectionDeg != 351 {
		t.Errorf("recovered DirectionDeg: got %d, want 351", second.DirectionDeg)
	}

	counts := decoder.CountersSnapshot()
	if counts.Stalls != 1 {
		t.Errorf("Stalls: got %d, want 1", counts.Stalls)
	}
}

// TestIntegrationContactBounceFiltered verifies that bounce edges inside the
// debounce window never reach the interval arithmetic.
func TestIntegrationContactBounceFiltered(t *testing.T) {
	watcher := gpio.NewFakeWatcher()
	capture := logic.NewCapture()
	wireCapture(t, watcher, capture)

	watcher.Pulse(gpio.LineSpeed, 1000000)
	watcher.Pulse(gpio.LineSpeed, 1004000) // bounce, 4 ms after the real edge
	watcher.Pulse(gpio.LineDir, 1010000)
	watcher.Pulse(gpio.LineDir, 1012000) // bounce
	watcher.Pulse(gpio.LineSpeed, 1400000)

	snap := capture.Snapshot()
	if snap.SpeedTime != 400000 {
		t.Errorf("SpeedTime: got %d, want 400000 (bounce should not shorten the interval)", snap.SpeedTime)
	}
	if snap.DirTime != 10000 {
		t.Errorf("DirTime: got %d, want 10000", snap.DirTime)
	}

	speedEdges, dirEdges := capture.EdgeCounts()
	if speedEdges != 2 {
		t.Errorf("speed edges: got %d, want 2", speedEdges)
	}
	if dirEdges != 1 {
		t.Errorf("dir edges: got %d, want 1", dirEdges)
	}
}

// TestIntegrationReadingPayloadFormat verifies the exact JSON structure.
func TestIntegrationReadingPayloadFormat(t *testing.T) {
	publisher := mqtt.NewFakePublisher()

	publisher.PublishReading(mqtt.Reading{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Output:    logic.Output{SpeedCmps: 286, RotationRate: 250},
	})

	expected := `{"wind":{"timestamp":"2026-02-02T22:18:12Z","speed_mps":2.86,"angle_rad":0,"speed_cmps":286,"direction_deg":0,"rotation_rate":250,"stalled":false}}`

	if string(publisher.Payloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(publisher.Payloads[0]), expected)
	}
}

// TestIntegrationLifecycleEvents verifies STARTUP and SHUTDOWN carry the full
// status snapshot the way the daemon publishes them.
func TestIntegrationLifecycleEvents(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	start := time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{
		PeriodMs:    200,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":80",
	})

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		t.Fatalf("startup publish error: %v", err)
	}

	tracker.Update(
		logic.Output{SpeedCmps: 286, DirectionDeg: 351, RotationRate: 250},
		logic.Counters{Cycles: 42},
		50, 48,
		logic.Settings{FilterGain: 0.25},
	)

	snap = tracker.Snapshot()
	shutdown := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	}
	if err := publisher.PublishSystem(shutdown); err != nil {
		t.Fatalf("shutdown publish error: %v", err)
	}

	if len(publisher.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(publisher.SystemEvents))
	}
	if !publisher.SystemEvents[0].Retained || !publisher.SystemEvents[1].Retained {
		t.Error("lifecycle events should be retained")
	}

	var parsedStartup status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[0], &parsedStartup); err != nil {
		t.Fatalf("startup payload: invalid JSON: %v", err)
	}
	if parsedStartup.Status.Event != "STARTUP" {
		t.Errorf("startup event: got %q", parsedStartup.Status.Event)
	}
	if parsedStartup.Status.Config.PeriodMs != 200 {
		t.Errorf("startup config period_ms: got %d, want 200", parsedStartup.Status.Config.PeriodMs)
	}

	var parsedShutdown status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[1], &parsedShutdown); err != nil {
		t.Fatalf("shutdown payload: invalid JSON: %v", err)
	}
	if parsedShutdown.Status.Event != "SHUTDOWN" {
		t.Errorf("shutdown event: got %q", parsedShutdown.Status.Event)
	}
	if parsedShutdown.Status.Reason != "SIGTERM" {
		t.Errorf("shutdown reason: got %q", parsedShutdown.Status.Reason)
	}
	if parsedShutdown.Status.SpeedCmps != 286 {
		t.Errorf("shutdown speed_cmps: got %d, want 286", parsedShutdown.Status.SpeedCmps)
	}
	if parsedShutdown.Status.Counts.Cycles != 42 {
		t.Errorf("shutdown cycles: got %d, want 42", parsedShutdown.Status.Counts.Cycles)
	}
}
