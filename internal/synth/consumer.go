// Package synth turns parsed notes into sung audio through the engine.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/voicevox"
)

var ErrSilent = errors.New("synth: score has no sounding notes")

// Engine is the part of the synthesis engine the consumer needs.
// *voicevox.Client satisfies it.
type Engine interface {
	SingFrameAudioQuery(ctx context.Context, score voicevox.Score, teacher int) (*voicevox.FrameAudioQuery, error)
	FrameSynthesis(ctx context.Context, query *voicevox.FrameAudioQuery, singer int) ([]byte, error)
	ConnectWaves(ctx context.Context, waves [][]byte) ([]byte, error)
}

// Request is one song to sing. PitchShift, when set, moves every f0 value
// by that many semitones after the teacher voice has produced it.
type Request struct {
	Notes      []notation.Note
	Teacher    int
	Singer     int
	PitchShift *float64
}

type Options struct {
	// SplitPhrases synthesizes each run of notes between rests on its own
	// and joins the results, which keeps the engine's phrasing short.
	SplitPhrases bool
	// Concurrency bounds parallel phrase synthesis. Zero means 4.
	Concurrency int
	Logger      *slog.Logger
}

func DefaultOptions() Options {
	return Options{Concurrency: 4}
}

// Consumer sings scores and returns WAV bytes.
type Consumer struct {
	engine Engine
	opts   Options
	log    *slog.Logger
}

func NewConsumer(engine Engine, opts Options) *Consumer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{engine: engine, opts: opts, log: log}
}

func (c *Consumer) Sing(ctx context.Context, req Request) ([]byte, error) {
	notes := WireNotes(req.Notes)
	if !sounding(notes) {
		return nil, ErrSilent
	}
	if !c.opts.SplitPhrases {
		return c.phrase(ctx, req, notes)
	}

	phrases := SplitPhrases(notes)
	waves := make([][]byte, len(phrases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, p := range phrases {
		g.Go(func() error {
			wav, err := c.phrase(gctx, req, p)
			if err != nil {
				return fmt.Errorf("phrase %d: %w", i, err)
			}
			waves[i] = wav
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.log.Debug("synth: phrases rendered", "phrases", len(phrases))
	if len(waves) == 1 {
		return waves[0], nil
	}
	wav, err := c.engine.ConnectWaves(ctx, waves)
	if err != nil {
		return nil, fmt.Errorf("synth: connect waves: %w", err)
	}
	return wav, nil
}

func (c *Consumer) phrase(ctx context.Context, req Request, notes []voicevox.Note) ([]byte, error) {
	q, err := c.engine.SingFrameAudioQuery(ctx, voicevox.Score{Notes: notes}, req.Teacher)
	if err != nil {
		return nil, fmt.Errorf("synth: frame query: %w", err)
	}
	if req.PitchShift != nil {
		ShiftF0(q.F0, *req.PitchShift)
	}
	wav, err := c.engine.FrameSynthesis(ctx, q, req.Singer)
	if err != nil {
		return nil, fmt.Errorf("synth: frame synthesis: %w", err)
	}
	return wav, nil
}

// ShiftF0 scales every value by 2^(semitones/12). Unvoiced frames stay 0.
func ShiftF0(f0 []float64, semitones float64) {
	ratio := math.Pow(2, semitones/12)
	for i := range f0 {
		f0[i] *= ratio
	}
}

// WireNotes converts parsed notes to the engine's note shape.
func WireNotes(notes []notation.Note) []voicevox.Note {
	out := make([]voicevox.Note, 0, len(notes))
	for _, n := range notes {
		w := voicevox.Note{FrameLength: n.Frames, Lyric: n.Lyric}
		if key, ok := n.Pitch.Key(); ok {
			w.Key = &key
		}
		out = append(out, w)
	}
	return out
}

func sounding(notes []voicevox.Note) bool {
	for _, n := range notes {
		if n.Key != nil {
			return true
		}
	}
	return false
}
