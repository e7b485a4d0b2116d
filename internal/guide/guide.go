// Package guide renders a parsed score as a plain synthesized melody, so a
// score can be auditioned without the singing engine.
package guide

import (
	"errors"
	"math"

	"github.com/cbegin/singbot/internal/lfo"
	"github.com/cbegin/singbot/internal/notation"
)

const twoPi = math.Pi * 2

var ErrFrameRate = errors.New("guide: frame rate must be positive")

type Wave int

const (
	WaveTriangle Wave = iota
	WavePulse
)

type Params struct {
	Wave       Wave
	MasterGain float64
	AttackSec  float64
	DecaySec   float64
	SustainLvl float64
	ReleaseSec float64
	PulseDuty  float64
	// Vibrato depth is in semitones.
	VibratoDepth    float64
	VibratoRateHz   float64
	VibratoDelaySec float64
	LPFCutoff       float64 // Hz, 0 disables
}

func DefaultParams() Params {
	return Params{
		Wave:            WaveTriangle,
		MasterGain:      0.5,
		AttackSec:       0.01,
		DecaySec:        0.12,
		SustainLvl:      0.8,
		ReleaseSec:      0.08,
		PulseDuty:       0.25,
		VibratoDepth:    0.3,
		VibratoRateHz:   5.5,
		VibratoDelaySec: 0.25,
		LPFCutoff:       6000,
	}
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

// Renderer is a monophonic voice. It is not safe for concurrent use.
type Renderer struct {
	sampleRate float64
	params     Params

	freq     float64
	phase    float64
	env      float64
	envState envState
	vibrato  lfo.LFO

	lpfAlpha  float64
	lpf       float64
	dcPrevIn  float64
	dcPrevOut float64
}

func New(sampleRate int, params Params) *Renderer {
	r := &Renderer{sampleRate: float64(sampleRate), params: params, envState: envOff}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1 / (twoPi * params.LPFCutoff)
		dt := 1 / float64(sampleRate)
		r.lpfAlpha = dt / (rc + dt)
	}
	r.vibrato.Set(params.VibratoDepth, params.VibratoRateHz, lfo.WaveSine)
	r.vibrato.SetDelay(params.VibratoDelaySec)
	return r
}

// Samples is the number of sample frames notes last at frameRate.
func Samples(notes []notation.Note, frameRate float64, sampleRate int) int {
	total := 0
	for _, n := range notes {
		total += n.Frames
	}
	return int(math.Round(float64(total) * float64(sampleRate) / frameRate))
}

// Render returns interleaved stereo samples for notes. Note boundaries are
// placed from the running frame total, so rounding never accumulates.
func (r *Renderer) Render(notes []notation.Note, frameRate float64) ([]float32, error) {
	if !(frameRate > 0) {
		return nil, ErrFrameRate
	}
	r.reset()
	total := Samples(notes, frameRate, int(r.sampleRate))
	out := make([]float32, 2*total)
	frames, pos := 0, 0
	for _, n := range notes {
		frames += n.Frames
		end := min(int(math.Round(float64(frames)*r.sampleRate/frameRate)), total)
		if key, ok := n.Pitch.Key(); ok {
			r.noteOn(key)
		}
		for ; pos < end; pos++ {
			s := r.renderSample()
			out[2*pos], out[2*pos+1] = s, s
		}
		r.noteOff()
	}
	return out, nil
}

func (r *Renderer) reset() {
	r.freq, r.phase, r.env = 0, 0, 0
	r.envState = envOff
	r.lpf, r.dcPrevIn, r.dcPrevOut = 0, 0, 0
	r.vibrato.Reset()
}

// noteOn restarts the envelope from its current level so back-to-back notes
// do not click.
func (r *Renderer) noteOn(key int) {
	r.freq = midiToFreq(key)
	r.envState = envAttack
	r.vibrato.Trigger()
}

func (r *Renderer) noteOff() {
	if r.envState != envOff {
		r.envState = envRelease
	}
}

func (r *Renderer) renderSample() float32 {
	env := r.advanceEnv()
	var s float64
	if env > 0 {
		f := r.freq
		if mod := r.vibrato.Sample(r.sampleRate); mod != 0 {
			f *= math.Pow(2, mod/12)
		}
		s = r.wave(f) * env * r.params.MasterGain
	}
	s = r.dcBlock(s)
	if r.lpfAlpha > 0 {
		r.lpf += r.lpfAlpha * (s - r.lpf)
		s = r.lpf
	}
	return float32(clamp(s, -1, 1))
}

func (r *Renderer) wave(freq float64) float64 {
	dt := freq / r.sampleRate
	r.phase += dt
	if r.phase >= 1 {
		r.phase -= 1
	}
	switch r.params.Wave {
	case WavePulse:
		duty := r.params.PulseDuty
		out := -1.0
		if r.phase < duty {
			out = 1
		}
		out += polyBLEP(r.phase, dt)
		out -= polyBLEP(math.Mod(r.phase-duty+1, 1), dt)
		return out
	default:
		return 2*math.Abs(2*r.phase-1) - 1
	}
}

// polyBLEP smooths the pulse edges; t is the phase in [0,1), dt the step.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func (r *Renderer) advanceEnv() float64 {
	p := r.params
	switch r.envState {
	case envAttack:
		r.env += step(1, p.AttackSec, r.sampleRate)
		if r.env >= 1 {
			r.env = 1
			r.envState = envDecay
		}
	case envDecay:
		r.env -= step(1-p.SustainLvl, p.DecaySec, r.sampleRate)
		if r.env <= p.SustainLvl {
			r.env = p.SustainLvl
			r.envState = envSustain
		}
	case envRelease:
		r.env -= step(math.Max(p.SustainLvl, 0.01), p.ReleaseSec, r.sampleRate)
		if r.env <= 0.0001 {
			r.env = 0
			r.envState = envOff
		}
	case envOff:
		r.env = 0
	}
	return r.env
}

// step is the per-sample change that covers span in sec seconds.
func step(span, sec, sampleRate float64) float64 {
	if sec <= 0 || span <= 0 {
		return 1
	}
	return span / (sec * sampleRate)
}

func (r *Renderer) dcBlock(x float64) float64 {
	const pole = 0.995
	y := x - r.dcPrevIn + pole*r.dcPrevOut
	r.dcPrevIn = x
	r.dcPrevOut = y
	return y
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
