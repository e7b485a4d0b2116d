// Package lfo provides the low-frequency oscillator used for vibrato.
package lfo

import "math"

type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSaw
)

// LFO produces one modulation value per sample in [-depth, +depth]. An
// optional onset delay keeps it silent at the start of each note and then
// fades it in over the same length of time, the way singers add vibrato to
// held notes only.
type LFO struct {
	depth    float64
	rateHz   float64
	waveform Waveform
	delaySec float64

	phase   float64 // [0, 1)
	elapsed float64 // seconds since Trigger
}

// Set configures depth, rate and waveform. Unknown waveforms fall back to sine.
func (l *LFO) Set(depth, rateHz float64, waveform Waveform) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSine || waveform > WaveSaw {
		waveform = WaveSine
	}
	l.waveform = waveform
}

// SetDelay sets the onset delay in seconds.
func (l *LFO) SetDelay(sec float64) {
	if sec < 0 {
		sec = 0
	}
	l.delaySec = sec
}

// Trigger restarts the phase and the onset delay.
func (l *LFO) Trigger() {
	l.phase = 0
	l.elapsed = 0
}

// Sample advances the LFO by one sample. It returns 0 while inactive.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	dt := 1 / sampleRate
	l.elapsed += dt
	onset := 1.0
	if l.delaySec > 0 {
		onset = clamp01((l.elapsed - l.delaySec) / l.delaySec)
	}

	v := l.wave()
	l.phase += l.rateHz * dt
	l.phase -= math.Floor(l.phase)
	return v * l.depth * onset
}

func (l *LFO) wave() float64 {
	switch l.waveform {
	case WaveTriangle:
		if l.phase < 0.5 {
			return 4*l.phase - 1
		}
		return 3 - 4*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 1 - 2*l.phase
	default:
		return math.Sin(2 * math.Pi * l.phase)
	}
}

// Active reports whether depth and rate are both non-zero.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

func (l *LFO) Reset() {
	l.Trigger()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
