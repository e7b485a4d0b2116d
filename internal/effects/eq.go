package effects

import "math"

// EQ is a three-band equalizer built from two one-pole crossovers.
type EQ struct {
	lowGain, midGain, highGain float32
	lpAlpha, hpAlpha           float32
	lp, hp                     [2]float32 // per channel
}

// NewEQ creates an equalizer. Gains are linear (1 = unity); lowFreq and
// highFreq are the crossover frequencies in Hz.
func NewEQ(sampleRate int, lowGain, midGain, highGain, lowFreq, highFreq float32) *EQ {
	return &EQ{
		lowGain:  lowGain,
		midGain:  midGain,
		highGain: highGain,
		lpAlpha:  onePole(sampleRate, lowFreq),
		hpAlpha:  onePole(sampleRate, highFreq),
	}
}

func onePole(sampleRate int, hz float32) float32 {
	rc := 1 / (2 * math.Pi * float64(hz))
	dt := 1 / float64(sampleRate)
	return float32(dt / (rc + dt))
}

func (eq *EQ) Process(buf []float32) {
	for i, x := range buf {
		ch := i & 1
		eq.lp[ch] += eq.lpAlpha * (x - eq.lp[ch])
		eq.hp[ch] += eq.hpAlpha * (x - eq.hp[ch])
		low := eq.lp[ch]
		high := x - eq.hp[ch]
		mid := x - low - high
		buf[i] = low*eq.lowGain + mid*eq.midGain + high*eq.highGain
	}
}

func (eq *EQ) Reset() {
	eq.lp = [2]float32{}
	eq.hp = [2]float32{}
}
