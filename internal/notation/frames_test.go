package notation

import (
	"math"
	"testing"
)

func TestFramesMatchesOriginalConstant(t *testing.T) {
	// 960 * 93.75 = 90000, the quarter at 120 is 46.875 frames
	frames, carry := FrameCalculator{Rate: 93.75}.Frames(120, 4, 4, 0)
	if frames != 46 || carry != 0.875 {
		t.Fatalf("frames, carry = %d, %v, want 46, 0.875", frames, carry)
	}
}

func TestFramesCarryPaysOut(t *testing.T) {
	calc := FrameCalculator{Rate: 93.75}
	var (
		carry float64
		got   []int
	)
	for i := 0; i < 4; i++ {
		var f int
		f, carry = calc.Frames(120, 4, 4, carry)
		got = append(got, f)
	}
	want := []int{46, 47, 47, 47}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frames = %v, want %v", got, want)
		}
	}
}

func TestFramesNoDrift(t *testing.T) {
	rates := []float64{93.75, 100, 24000.0 / 256}
	tempos := []int{60, 97, 120, 133, 200}
	for _, rate := range rates {
		for _, tempo := range tempos {
			calc := FrameCalculator{Rate: rate}
			exact := 960 * rate / float64(tempo*4*4)
			carry, total := 0.0, 0
			for n := 1; n <= 500; n++ {
				var f int
				f, carry = calc.Frames(tempo, 4, 4, carry)
				total += f
				if carry < 0 || carry >= 1 {
					t.Fatalf("rate %v tempo %d: carry %v out of [0,1)", rate, tempo, carry)
				}
				if d := math.Abs(float64(total) - float64(n)*exact); d > 1 {
					t.Fatalf("rate %v tempo %d: after %d notes drift %v frames", rate, tempo, n, d)
				}
			}
		}
	}
}

func TestFramesRejectsDegenerateInput(t *testing.T) {
	calc := FrameCalculator{Rate: 93.75}
	for _, tc := range []struct {
		tempo, tempoNote int
		length           float64
	}{
		{0, 4, 4},
		{120, 0, 4},
		{120, 4, 0},
		{-120, 4, 4},
	} {
		if f, c := calc.Frames(tc.tempo, tc.tempoNote, tc.length, 0.5); f != 0 || c != 0.5 {
			t.Fatalf("Frames(%d, %d, %v) = %d, %v, want 0, 0.5", tc.tempo, tc.tempoNote, tc.length, f, c)
		}
	}
}
