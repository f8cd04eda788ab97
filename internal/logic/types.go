// Package logic contains the pure decode pipeline for the wind instrument.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// The microsecond clock is always injected as a parameter.
package logic

// Timing constants, in microseconds.
const (
	// Debounce is the minimum time between accepted edges on one line.
	// The reed switches bounce for a few milliseconds on closure.
	Debounce = 10000

	// Timeout is how long the decoder waits for a speed pulse before
	// treating the cup wheel as stalled (zero wind).
	Timeout = 1500000
)

// Speed bands, in cm/s. Band selection uses strict < comparisons.
const (
	band0Limit = 500  // below: light air
	band1Limit = 4000 // below: working range; at or above: storm band
)

// Rotation rate boundaries between the three calibration formulas,
// in rotations per 100 seconds.
const (
	rateBandA = 323
	rateBandB = 5436
)

// Per-band deviation limits. A reading whose change from the previous one
// exceeds the limit for its band is discarded as implausible.
var (
	speedDevLimit = [3]int{500, 1000, 3000} // cm/s
	dirDevLimit   = [3]int{25, 18, 10}      // degrees, circular
)

// Snapshot is a consistent copy of the shared pulse state, taken once per
// decode cycle. All four fields come from the same locked read.
type Snapshot struct {
	// SpeedPulse is the µs timestamp of the last accepted speed edge.
	SpeedPulse uint64
	// DirPulse is the µs timestamp of the last accepted direction edge.
	DirPulse uint64
	// SpeedTime is the µs interval between the last two accepted speed edges.
	SpeedTime uint64
	// DirTime is the µs interval from the previous speed edge to the
	// direction edge that followed it.
	DirTime uint64
}

// Settings are the runtime-tunable decode parameters, read once per cycle.
// They may be changed externally between cycles.
type Settings struct {
	// FilterGain is the direction smoothing strength in [0, 1].
	// 1.0 disables smoothing; values near 0 heavily damp changes.
	FilterGain float64
	// DirectionOffsetDeg corrects for the vane's mounting angle.
	DirectionOffsetDeg int
	// DebugEnabled turns on the per-cycle diagnostic dump.
	DebugEnabled bool
}

// Output is the result of one decode cycle.
type Output struct {
	// SpeedCmps is the published wind speed in cm/s. On rejection it holds
	// the previously published value; on stall it is 0.
	SpeedCmps int
	// DirectionDeg is the published (smoothed) direction in [0, 360).
	DirectionDeg int

	// Diagnostics.
	RotationRate    int64 // rotations per 100 s
	RawSpeedCmps    int   // calibrated speed before the plausibility check
	RawDirectionDeg int   // resolved direction before smoothing, -1 if not resolved

	Stalled       bool
	SpeedRejected bool
	DirResolved   bool
	DirRejected   bool
	OrderingFault bool
}

// Counters accumulate decode outcomes since startup.
type Counters struct {
	Cycles         int
	Stalls         int
	SpeedRejected  int
	DirRejected    int
	OrderingFaults int
}
