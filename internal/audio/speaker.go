package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/cbegin/singbot/internal/effects"
)

// Speaker plays WAV items on the local audio device.
type Speaker struct {
	sampleRate int
	chain      *effects.Chain
	log        *slog.Logger
	poll       time.Duration
}

type SpeakerOption func(*Speaker)

// WithEffects runs every item through chain before playback.
func WithEffects(chain *effects.Chain) SpeakerOption {
	return func(s *Speaker) { s.chain = chain }
}

func WithSpeakerLogger(log *slog.Logger) SpeakerOption {
	return func(s *Speaker) { s.log = log }
}

func NewSpeaker(sampleRate int, opts ...SpeakerOption) *Speaker {
	s := &Speaker{sampleRate: sampleRate, log: slog.Default(), poll: 20 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play decodes the item, applies effects and blocks until it has been heard
// or ctx ends.
func (s *Speaker) Play(ctx context.Context, item Item) error {
	samples, err := Decode(item.WAV, s.sampleRate)
	if err != nil {
		return err
	}
	s.chain.Reset()
	s.chain.Process(samples)

	p, err := newPlayer(s.sampleRate, &bufferSource{samples: samples})
	if err != nil {
		return fmt.Errorf("audio: open player: %w", err)
	}
	defer p.Stop()
	p.Play()
	s.log.Debug("audio: playing", "id", item.ID, "label", item.Label, "seconds", float64(len(samples)/2)/float64(s.sampleRate))

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Decode reads a PCM WAV, resamples it to sampleRate and returns interleaved
// stereo float32 samples.
func Decode(data []byte, sampleRate int) ([]float32, error) {
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("audio: read wav: %w", err)
	}
	// the decoder always yields 16-bit little-endian stereo
	out := make([]float32, len(raw)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return out, nil
}
