package lfo

import (
	"math"
	"testing"
)

func TestLFOSineShape(t *testing.T) {
	l := &LFO{}
	l.Set(1, 1, WaveSine)
	sr := 100.0
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}
	if math.Abs(samples[0]) > 1e-9 {
		t.Errorf("sine at phase 0: got %f, want 0", samples[0])
	}
	if math.Abs(samples[25]-1) > 1e-6 {
		t.Errorf("sine at phase 0.25: got %f, want 1", samples[25])
	}
	if math.Abs(samples[75]+1) > 1e-6 {
		t.Errorf("sine at phase 0.75: got %f, want -1", samples[75])
	}
}

func TestLFOTriangleShape(t *testing.T) {
	l := &LFO{}
	l.Set(1, 1, WaveTriangle)
	sr := 100.0
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}
	if math.Abs(samples[0]+1) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1", samples[0])
	}
	if math.Abs(samples[50]-1) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1", samples[50])
	}
}

func TestLFOSquareAndSaw(t *testing.T) {
	l := &LFO{}
	l.Set(2, 1, WaveSquare)
	if v := l.Sample(100); v != 2 {
		t.Errorf("square first half: got %f, want 2", v)
	}
	for i := 1; i < 50; i++ {
		l.Sample(100)
	}
	if v := l.Sample(100); v != -2 {
		t.Errorf("square second half: got %f, want -2", v)
	}

	l.Set(1, 1, WaveSaw)
	l.Trigger()
	if v := l.Sample(100); math.Abs(v-1) > 1e-9 {
		t.Errorf("saw at phase 0: got %f, want 1", v)
	}
}

func TestLFOInactive(t *testing.T) {
	l := &LFO{}
	if l.Active() {
		t.Fatal("zero LFO should be inactive")
	}
	if v := l.Sample(100); v != 0 {
		t.Fatalf("inactive sample = %f, want 0", v)
	}
	l.Set(1, 0, WaveSine)
	if l.Active() {
		t.Fatal("zero rate should be inactive")
	}
}

func TestLFOOnsetDelay(t *testing.T) {
	l := &LFO{}
	l.Set(1, 5, WaveSquare)
	l.SetDelay(0.5)
	sr := 100.0
	var peakEarly, peakLate float64
	for i := 0; i < 200; i++ {
		v := math.Abs(l.Sample(sr))
		switch {
		case i < 40:
			peakEarly = math.Max(peakEarly, v)
		case i >= 100:
			peakLate = math.Max(peakLate, v)
		}
	}
	if peakEarly != 0 {
		t.Errorf("vibrato during delay: %f", peakEarly)
	}
	if math.Abs(peakLate-1) > 1e-9 {
		t.Errorf("vibrato after fade-in = %f, want 1", peakLate)
	}

	l.Trigger()
	if v := l.Sample(sr); v != 0 {
		t.Errorf("Trigger should restart the delay, got %f", v)
	}
}

func TestLFOUnknownWaveformFallsBackToSine(t *testing.T) {
	l := &LFO{}
	l.Set(1, 1, Waveform(42))
	l.Sample(4)
	if v := l.Sample(4); math.Abs(v-1) > 1e-9 {
		t.Fatalf("got %f, want sine peak 1", v)
	}
}
