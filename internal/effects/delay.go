package effects

// Echo repeats the voice after a fixed delay with decaying feedback.
type Echo struct {
	lines [2]delayLine
	wet   float32
}

// NewEcho creates an echo.
// delayMs: time between repeats
// feedback: 0..0.95 decay per repeat
// wet: wet/dry mix 0..1
func NewEcho(sampleRate int, delayMs, feedback, wet float32) *Echo {
	n := int(delayMs * float32(sampleRate) / 1000)
	fb := clamp(feedback, 0, 0.95)
	return &Echo{
		lines: [2]delayLine{newDelayLine(n, fb), newDelayLine(n, fb)},
		wet:   clamp(wet, 0, 1),
	}
}

func (e *Echo) Process(buf []float32) {
	for i, x := range buf {
		delayed := e.lines[i&1].comb(x)
		buf[i] = x*(1-e.wet) + delayed*e.wet
	}
}

func (e *Echo) Reset() {
	e.lines[0].reset()
	e.lines[1].reset()
}
