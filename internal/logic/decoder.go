package logic

import "math"

// Decoder runs the per-cycle pipeline: stall detection, calibration,
// plausibility filtering, direction resolution and smoothing. It carries the
// filter state between cycles and is never reset once running. Not safe for
// concurrent use — the scheduler calls Cycle from a single goroutine.
type Decoder struct {
	prevSpeed   int // last calibrated speed, accepted or not, cm/s
	prevDir     int // last resolved direction, accepted or not, degrees
	smoothedDir int // published direction, degrees [0, 360)
	speedOut    int // published speed, cm/s
	counts      Counters
}

// NewDecoder creates a Decoder with zeroed filter state. The first cycle
// after startup compares against zeros and yields one unfiltered warm-up
// sample.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Cycle decodes one snapshot taken at now (µs) and returns the cycle output.
// It never fails: stall, ordering faults and implausible deviations degrade
// to retaining the previously published values.
func (d *Decoder) Cycle(snap Snapshot, now uint64, s Settings) Output {
	d.counts.Cycles++
	out := Output{RawDirectionDeg: -1}

	speedTime := snap.SpeedTime
	if now-snap.SpeedPulse > Timeout {
		speedTime = 0
	}
	// A zero interval is treated like a stall. The timeout normally covers
	// it, but the interval can be snapshotted as 0 before the first full
	// rotation completes, and dividing by it must never happen.
	if speedTime == 0 {
		d.speedOut = 0
		d.prevSpeed = 0
		d.counts.Stalls++
		out.Stalled = true
		out.DirectionDeg = d.smoothedDir
		return out
	}

	r := rotationRate(speedTime)
	cmps := calibratedSpeed(r)
	out.RotationRate = r
	out.RawSpeedCmps = cmps

	if speedDevOK(cmps, cmps-d.prevSpeed) {
		d.speedOut = cmps
		d.resolveDirection(snap, cmps, s, &out)
	} else {
		d.counts.SpeedRejected++
		out.SpeedRejected = true
	}
	// Advance even when rejected, so a genuine step change is accepted on
	// the next cycle instead of being rejected forever.
	d.prevSpeed = cmps

	out.SpeedCmps = d.speedOut
	out.DirectionDeg = d.smoothedDir
	return out
}

// resolveDirection converts the pulse timing ratio into a compass-relative
// angle and folds it into the smoothed output. Only called when the speed
// reading was accepted.
func (d *Decoder) resolveDirection(snap Snapshot, cmps int, s Settings, out *Output) {
	if snap.DirTime > snap.SpeedTime {
		// The vane pulse did not land inside this rotation window.
		d.counts.OrderingFaults++
		out.OrderingFault = true
		return
	}

	deg := int(snap.DirTime * 360 / snap.SpeedTime)
	deg = normalizeDeg(deg - s.DirectionOffsetDeg)
	// The vane switch rotates opposite to the compass convention.
	deg = normalizeDeg(360 - deg)
	out.RawDirectionDeg = deg
	out.DirResolved = true

	if dirDevOK(cmps, deg-d.prevDir) {
		d.smooth(deg, s.FilterGain)
	} else {
		d.counts.DirRejected++
		out.DirRejected = true
	}
	d.prevDir = deg
}

// smooth folds an accepted direction into the published value with an
// exponential low-pass along the shortest angular path. A gain of 1.0 jumps
// straight to the new value.
func (d *Decoder) smooth(deg int, gain float64) {
	delta := deg - d.smoothedDir
	if delta < -180 {
		delta += 360
	} else if delta > 180 {
		delta -= 360
	}
	d.smoothedDir = normalizeDeg(d.smoothedDir + int(math.Round(gain*float64(delta))))
}

// CountersSnapshot returns a copy of the decode outcome counters.
func (d *Decoder) CountersSnapshot() Counters {
	return d.counts
}

// normalizeDeg wraps a degree value into [0, 360).
func normalizeDeg(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
