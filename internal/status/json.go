package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	SpeedMps      float64      `json:"speed_mps"`
	AngleRad      float64      `json:"angle_rad"`
	SpeedCmps     int          `json:"speed_cmps"`
	DirectionDeg  int          `json:"direction_deg"`
	RotationRate  int64        `json:"rotation_rate"`
	Stalled       bool         `json:"stalled"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Settings      SettingsJSON `json:"settings"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of decode and pulse counters.
type CountsJSON struct {
	Cycles         int    `json:"cycles"`
	Stalls         int    `json:"stalls"`
	SpeedRejected  int    `json:"speed_rejected"`
	DirRejected    int    `json:"dir_rejected"`
	OrderingFaults int    `json:"ordering_faults"`
	SpeedEdges     uint64 `json:"speed_edges"`
	DirEdges       uint64 `json:"dir_edges"`
}

// SettingsJSON is the JSON representation of the active runtime settings.
type SettingsJSON struct {
	FilterGain         float64 `json:"filter_gain"`
	DirectionOffsetDeg int     `json:"direction_offset_deg"`
	DebugEnabled       bool    `json:"debug_enabled"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs    int64  `json:"period_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	NMEADevice  string `json:"nmea_device,omitempty"`
	ConfigPath  string `json:"config_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		SpeedMps:      float64(snap.Output.SpeedCmps) / 100,
		AngleRad:      float64(snap.Output.DirectionDeg) * math.Pi / 180,
		SpeedCmps:     snap.Output.SpeedCmps,
		DirectionDeg:  snap.Output.DirectionDeg,
		RotationRate:  snap.Output.RotationRate,
		Stalled:       snap.Output.Stalled,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Cycles:         snap.Counts.Cycles,
			Stalls:         snap.Counts.Stalls,
			SpeedRejected:  snap.Counts.SpeedRejected,
			DirRejected:    snap.Counts.DirRejected,
			OrderingFaults: snap.Counts.OrderingFaults,
			SpeedEdges:     snap.SpeedEdges,
			DirEdges:       snap.DirEdges,
		},
		Settings: SettingsJSON{
			FilterGain:         snap.Settings.FilterGain,
			DirectionOffsetDeg: snap.Settings.DirectionOffsetDeg,
			DebugEnabled:       snap.Settings.DebugEnabled,
		},
		Config: ConfigJSON{
			PeriodMs:    snap.Config.PeriodMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			NMEADevice:  snap.Config.NMEADevice,
			ConfigPath:  snap.Config.ConfigPath,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
