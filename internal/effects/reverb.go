package effects

// Reverb is a Schroeder reverb: four parallel combs into two allpasses,
// fed from the mono sum and mixed back into both channels.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float32
}

// delayLine is a circular buffer with feedback, used as either a comb or an allpass.
type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb.
// roomSize: 0..1 scales the delay lengths
// feedback: 0..1 sets the decay
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(feedback, 0, 0.95)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	// mutually prime-ish ratios keep the combs from ringing together
	for i, ratio := range [4]int{1000, 1117, 1271, 1437} {
		r.combs[i] = newDelayLine(base*ratio/1000, fb)
	}
	for i, ratio := range [2]int{347, 213} {
		r.allpass[i] = newDelayLine(base*ratio/1000, 0.5)
	}
	return r
}

func newDelayLine(n int, fb float32) delayLine {
	if n < 1 {
		n = 1
	}
	return delayLine{buf: make([]float32, n), fb: fb}
}

func (r *Reverb) Process(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		mono := (buf[i] + buf[i+1]) * 0.5
		var out float32
		for c := range r.combs {
			out += r.combs[c].comb(mono)
		}
		out *= 0.25
		for a := range r.allpass {
			out = r.allpass[a].allpass(out)
		}
		buf[i] = buf[i]*(1-r.wet) + out*r.wet
		buf[i+1] = buf[i+1]*(1-r.wet) + out*r.wet
	}
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
