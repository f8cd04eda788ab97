package logic

// speedBand returns the deviation band index for a calibrated speed.
// Boundaries are strict: exactly 500 cm/s falls in band 1, exactly 4000 in
// band 2.
func speedBand(cmps int) int {
	switch {
	case cmps < band0Limit:
		return 0
	case cmps < band1Limit:
		return 1
	default:
		return 2
	}
}

// speedDevOK reports whether the change from the previous calibrated speed
// is plausible for the band the new value falls in.
func speedDevOK(cmps, dev int) bool {
	return abs(dev) < speedDevLimit[speedBand(cmps)]
}

// dirDevOK reports whether a direction change is plausible. The comparison
// is circular: a raw deviation of 355° is a true deviation of 5°. Limits are
// keyed by the speed band — at low wind the vane can legitimately swing
// further between updates.
func dirDevOK(cmps, dev int) bool {
	limit := dirDevLimit[speedBand(cmps)]
	return abs(dev) < limit || abs(dev) > 360-limit
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
