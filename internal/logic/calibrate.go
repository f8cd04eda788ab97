package logic

// rotationRate converts a speed pulse interval (µs) to cup wheel rotations
// per 100 seconds. Working in µs keeps the hot path in integer arithmetic.
// Caller guarantees speedTime > 0.
func rotationRate(speedTime uint64) int64 {
	return int64(100000000 / speedTime)
}

// calibratedSpeed maps a rotation rate to wind speed in cm/s using the
// three-band Peet Bros. transfer curve. The multiply-before-divide order is
// load-bearing: the coefficients were tuned against exactly this truncation.
func calibratedSpeed(r int64) int {
	var cmps int64
	switch {
	case r < rateBandA:
		cmps = (r*r*-11)/22369 + (293*r)/223 - 12
	case r < rateBandB:
		cmps = (r*r/2)/22369 + (220*r)/223 + 96
	default:
		cmps = (r*r*11)/22369 - (957*r)/223 + 28664
	}
	if cmps < 0 {
		cmps = 0
	}
	return int(cmps)
}
