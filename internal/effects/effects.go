// Package effects post-processes synthesized voices before playback.
// Every effect works on interleaved stereo float32 buffers in place.
package effects

import (
	"fmt"
	"strconv"
	"strings"
)

type Effect interface {
	Process(buf []float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effect
}

func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(buf []float32) {
	if c == nil {
		return
	}
	for _, e := range c.effects {
		e.Process(buf)
	}
}

func (c *Chain) Reset() {
	if c == nil {
		return
	}
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effect) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.effects)
}

// VoicePreset is the default chain: a little presence, gentle compression
// and a short room.
const VoicePreset = "eq 0.9,1,1.2,250,4000; comp -18,3,5,120,3; reverb 0.3,0.6,0.12"

// Parse builds a chain from a definition such as "eq 1,1,1.2; comp -18,3; reverb".
// Each entry is an effect name followed by optional comma-separated
// parameters; missing parameters take their defaults. "none" or an empty
// definition yields an empty chain.
func Parse(def string, sampleRate int) (*Chain, error) {
	chain := NewChain()
	def = strings.TrimSpace(def)
	if def == "" || strings.EqualFold(def, "none") {
		return chain, nil
	}
	for _, entry := range strings.Split(def, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rawParams, _ := strings.Cut(entry, " ")
		var params []float64
		for _, p := range strings.Split(rawParams, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("effects: %s: bad parameter %q", name, p)
			}
			params = append(params, v)
		}
		e, err := create(strings.ToLower(name), params, sampleRate)
		if err != nil {
			return nil, err
		}
		chain.Add(e)
	}
	return chain, nil
}

func create(name string, params []float64, sampleRate int) (Effect, error) {
	param := func(i int, def float64) float32 {
		if i < len(params) {
			return float32(params[i])
		}
		return float32(def)
	}
	switch name {
	case "eq":
		return NewEQ(sampleRate,
			param(0, 1),    // low gain
			param(1, 1),    // mid gain
			param(2, 1),    // high gain
			param(3, 300),  // low crossover Hz
			param(4, 3000), // high crossover Hz
		), nil
	case "comp", "compressor":
		return NewCompressor(sampleRate,
			param(0, -20), // threshold dB
			param(1, 4),   // ratio
			param(2, 5),   // attack ms
			param(3, 100), // release ms
			param(4, 0),   // makeup dB
		), nil
	case "reverb":
		return NewReverb(sampleRate,
			param(0, 0.5),  // room size
			param(1, 0.7),  // feedback
			param(2, 0.25), // wet
		), nil
	case "echo", "delay":
		return NewEcho(sampleRate,
			param(0, 250), // delay ms
			param(1, 0.3), // feedback
			param(2, 0.2), // wet
		), nil
	case "gain":
		return Gain(dbToLinear(param(0, 0))), nil
	}
	return nil, fmt.Errorf("effects: unknown effect %q", name)
}

// Gain scales every sample.
type Gain float32

func (g Gain) Process(buf []float32) {
	for i := range buf {
		buf[i] *= float32(g)
	}
}

func (Gain) Reset() {}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
