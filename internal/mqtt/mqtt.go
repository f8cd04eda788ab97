// Package mqtt publishes wind readings to the telemetry broker, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/wind-sensor/internal/logic"
)

// TopicReading is the MQTT topic for periodic wind readings.
const TopicReading = "sensors/wind/reading"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensors/wind/system"

// Publisher publishes readings and lifecycle events to MQTT.
type Publisher interface {
	// PublishReading sends one wind reading to the broker.
	// Returns error if publishing fails (must not crash the process).
	PublishReading(r Reading) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Reading is one decoded wind sample ready for publication.
type Reading struct {
	Timestamp time.Time
	Output    logic.Output
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message envelope for a wind reading.
type Payload struct {
	Wind WindPayload `json:"wind"`
}

// WindPayload carries the published sample. Speed is real-valued m/s;
// the integer cm/s and degree fields are kept alongside for consumers that
// want the decoder's native units.
type WindPayload struct {
	Timestamp    string  `json:"timestamp"`
	SpeedMps     float64 `json:"speed_mps"`
	AngleRad     float64 `json:"angle_rad"`
	SpeedCmps    int     `json:"speed_cmps"`
	DirectionDeg int     `json:"direction_deg"`
	RotationRate int64   `json:"rotation_rate"`
	Stalled      bool    `json:"stalled"`
}

// FormatReadingPayload creates the JSON payload for a wind reading.
func FormatReadingPayload(r Reading) ([]byte, error) {
	payload := Payload{
		Wind: WindPayload{
			Timestamp:    r.Timestamp.UTC().Format(time.RFC3339),
			SpeedMps:     float64(r.Output.SpeedCmps) / 100,
			AngleRad:     float64(r.Output.DirectionDeg) * math.Pi / 180,
			SpeedCmps:    r.Output.SpeedCmps,
			DirectionDeg: r.Output.DirectionDeg,
			RotationRate: r.Output.RotationRate,
			Stalled:      r.Output.Stalled,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message envelope for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
