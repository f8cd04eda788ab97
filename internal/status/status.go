// Package status provides a thread-safe status tracker for the wind-sensor
// daemon. It is read by the HTTP handlers and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/wind-sensor/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper. This is a
// local copy to avoid coupling status to the env var plumbing in main.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs    int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	NMEADevice  string // empty = NMEA output disabled
	ConfigPath  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Output        logic.Output   // latest decode cycle result
	Counts        logic.Counters // decode outcome totals
	SpeedEdges    uint64         // accepted pulse totals
	DirEdges      uint64
	Settings      logic.Settings // active runtime settings
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest decode output, counters and active settings.
// Called from the decode loop on every cycle.
func (t *Tracker) Update(out logic.Output, counts logic.Counters, speedEdges, dirEdges uint64, settings logic.Settings) {
	t.mu.Lock()
	t.snap.Output = out
	t.snap.Counts = counts
	t.snap.SpeedEdges = speedEdges
	t.snap.DirEdges = dirEdges
	t.snap.Settings = settings
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
