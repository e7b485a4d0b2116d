package effects

import "math"

// Compressor is a stereo-linked compressor: one envelope follows the louder
// channel so the voice does not wander in the stereo image.
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32 // coefficient
	release   float32 // coefficient
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor.
// thresholdDB: level above which gain is reduced (e.g. -20)
// ratio: compression ratio (e.g. 4 for 4:1)
// attackMs, releaseMs: envelope times
// makeupDB: gain applied after compression
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: dbToLinear(thresholdDB),
		ratio:     ratio,
		attack:    envelopeCoeff(sampleRate, attackMs),
		release:   envelopeCoeff(sampleRate, releaseMs),
		makeup:    dbToLinear(makeupDB),
	}
}

func (c *Compressor) Process(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		peak := float32(math.Max(math.Abs(float64(buf[i])), math.Abs(float64(buf[i+1]))))
		if peak > c.env {
			c.env += c.attack * (peak - c.env)
		} else {
			c.env += c.release * (peak - c.env)
		}
		g := c.gain(c.env) * c.makeup
		buf[i] *= g
		buf[i+1] *= g
	}
}

func (c *Compressor) gain(env float32) float32 {
	if env <= c.threshold || c.threshold <= 0 {
		return 1
	}
	over := env / c.threshold
	return float32(math.Pow(float64(over), float64(1/c.ratio-1)))
}

func (c *Compressor) Reset() { c.env = 0 }

func dbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func envelopeCoeff(sampleRate int, ms float32) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}
