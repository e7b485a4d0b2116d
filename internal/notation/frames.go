package notation

import "math"

// framesPerWholeMinute folds 60 seconds per minute and the two "relative to a
// quarter note" factors of 4 into one constant.
const framesPerWholeMinute = 960

// FrameCalculator converts note lengths into engine frames at a fixed frame rate.
type FrameCalculator struct {
	Rate float64
}

// Frames returns the whole frame count of one note and the updated carry.
// The fractional part of every note accumulates in carry and is paid out as
// one extra frame whenever it reaches 1, so a run of notes never drifts by
// more than a frame from its exact length.
func (c FrameCalculator) Frames(tempo, tempoNote int, noteLength, carry float64) (int, float64) {
	exact := framesPerWholeMinute * c.Rate / (float64(tempo) * float64(tempoNote) * noteLength)
	if math.IsNaN(exact) || math.IsInf(exact, 0) || exact <= 0 {
		return 0, carry
	}
	whole := math.Floor(exact)
	frames := int(whole)
	carry += exact - whole
	if carry >= 1 {
		frames++
		carry--
	}
	return frames, carry
}
