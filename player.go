package singbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	intaudio "github.com/cbegin/singbot/internal/audio"
	intfx "github.com/cbegin/singbot/internal/effects"
	"github.com/cbegin/singbot/internal/notation"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	frameRate float64
	effects   string
	sink      intaudio.Sink
	log       *slog.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{frameRate: 93.75, effects: "none", log: slog.Default()}
}

// WithFrameRate sets the engine frame rate scores are timed against.
func WithFrameRate(rate float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.frameRate = rate
	}
}

// WithEffects applies an effect chain such as "reverb 0.3,0.6,0.12" to the
// speaker output. It has no effect when a sink is given.
func WithEffects(def string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.effects = def
	}
}

// WithSink sends rendered guides somewhere other than the local speaker.
func WithSink(sink intaudio.Sink) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sink = sink
	}
}

func WithLogger(log *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

// Player previews scores as guide tones, so a score can be checked without
// the synthesis engine.
type Player struct {
	sampleRate int
	parser     *notation.Parser
	frameRate  float64
	sink       intaudio.Sink
	log        *slog.Logger
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.frameRate <= 0 {
		return nil, fmt.Errorf("singbot: frame rate must be positive, got %v", cfg.frameRate)
	}
	sink := cfg.sink
	if sink == nil {
		chain, err := intfx.Parse(cfg.effects, sampleRate)
		if err != nil {
			return nil, err
		}
		sink = intaudio.NewSpeaker(sampleRate, intaudio.WithEffects(chain), intaudio.WithSpeakerLogger(cfg.log))
	}
	pcfg := notation.DefaultConfig()
	pcfg.Logger = cfg.log
	return &Player{
		sampleRate: sampleRate,
		parser:     notation.NewParser(pcfg, notation.FixedRate(cfg.frameRate)),
		frameRate:  cfg.frameRate,
		sink:       sink,
		log:        cfg.log,
	}, nil
}

// Preview compiles text, renders its guide tone and plays it. It blocks until
// playback ends.
func (p *Player) Preview(ctx context.Context, text string) (*Compiled, error) {
	compiled, err := CompileWith(p.parser, text)
	if err != nil {
		return nil, err
	}
	samples, err := RenderGuide(compiled.Notes, p.frameRate, p.sampleRate)
	if err != nil {
		return nil, err
	}
	item := intaudio.Item{ID: uuid.New(), Label: "preview", WAV: EncodeWAVPCM16LE(samples, p.sampleRate, 2)}
	p.log.Debug("singbot: preview", "id", item.ID, "kind", compiled.Kind.String(), "frames", compiled.Frames())
	if err := p.sink.Play(ctx, item); err != nil {
		return nil, err
	}
	return compiled, nil
}
