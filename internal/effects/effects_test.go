package effects

import (
	"math"
	"testing"
)

func impulse(frames int) []float32 {
	buf := make([]float32, frames*2)
	buf[0], buf[1] = 1, 1
	return buf
}

func TestEchoRepeatsImpulse(t *testing.T) {
	e := NewEcho(1000, 100, 0.5, 0.5)
	buf := impulse(300)
	e.Process(buf)
	// 100ms at 1kHz is frame 100
	if l, r := buf[200], buf[201]; math.Abs(float64(l)-0.5) > 1e-6 || math.Abs(float64(r)-0.5) > 1e-6 {
		t.Fatalf("first repeat = %f, %f, want 0.5", l, r)
	}
	if l := buf[400]; math.Abs(float64(l)-0.25) > 1e-6 {
		t.Fatalf("second repeat = %f, want 0.25", l)
	}
}

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.7, 0.5)
	buf := impulse(10000)
	r.Process(buf)
	var maxOut float32
	for i := 200; i < len(buf); i += 2 {
		if buf[i] > maxOut {
			maxOut = buf[i]
		}
	}
	if maxOut < 0.001 {
		t.Fatal("expected reverb tail")
	}
}

func TestReverbReset(t *testing.T) {
	r := NewReverb(8000, 0.5, 0.7, 1)
	r.Process(impulse(100))
	r.Reset()
	buf := make([]float32, 2000)
	r.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %f after reset, want silence", i, v)
		}
	}
}

func TestEQUnityGain(t *testing.T) {
	eq := NewEQ(44100, 1, 1, 1, 300, 3000)
	buf := make([]float32, 2002)
	for i := range buf {
		buf[i] = 0.5
	}
	eq.Process(buf)
	l, r := buf[2000], buf[2001]
	if math.Abs(float64(l)-0.5) > 0.1 || math.Abs(float64(r)-0.5) > 0.1 {
		t.Fatalf("expected ~0.5 with unity gains, got l=%f r=%f", l, r)
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100, -10, 4, 1, 50, 0)
	buf := make([]float32, 2000)
	for i := range buf {
		buf[i] = 1
	}
	c.Process(buf)
	if out := buf[len(buf)-2]; out >= 1 {
		t.Fatalf("compressor should reduce loud signals, got %f", out)
	}
}

func TestCompressorIsStereoLinked(t *testing.T) {
	c := NewCompressor(44100, -20, 8, 0, 50, 0)
	buf := []float32{1, 0.05, 1, 0.05}
	c.Process(buf)
	if ratio := buf[3] / buf[2]; math.Abs(float64(ratio)-0.05) > 1e-4 {
		t.Fatalf("channel balance changed: %f", ratio)
	}
}

func TestParseChain(t *testing.T) {
	c, err := Parse(VoicePreset, 24000)
	if err != nil {
		t.Fatalf("parse preset: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("preset has %d effects, want 3", c.Len())
	}
	c, err = Parse("gain -6.0206; echo", 24000)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("got %d effects, want 2", c.Len())
	}
	buf := []float32{1, 1}
	NewChain(Gain(dbToLinear(-6.0206))).Process(buf)
	if math.Abs(float64(buf[0])-0.5) > 1e-4 {
		t.Fatalf("gain -6dB = %f, want 0.5", buf[0])
	}
}

func TestParseEmptyAndErrors(t *testing.T) {
	for _, def := range []string{"", "none", " ; "} {
		c, err := Parse(def, 24000)
		if err != nil || c.Len() != 0 {
			t.Fatalf("Parse(%q) = %d effects, %v; want empty chain", def, c.Len(), err)
		}
	}
	for _, def := range []string{"flanger", "eq 1,x"} {
		if _, err := Parse(def, 24000); err == nil {
			t.Fatalf("Parse(%q) should fail", def)
		}
	}
}

func TestNilChainIsNoop(t *testing.T) {
	var c *Chain
	buf := []float32{0.3, 0.3}
	c.Process(buf)
	c.Reset()
	if buf[0] != 0.3 {
		t.Fatal("nil chain modified the buffer")
	}
}
