// Package bot routes chat messages to the right synthesis path and queues
// the result for playback.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cbegin/singbot/internal/audio"
	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/synth"
	"github.com/cbegin/singbot/internal/voicevox"
)

var (
	ErrEmptyMessage = errors.New("bot: empty message")
	ErrClosed       = errors.New("bot: closed")
)

// Singer sings parsed notes. *synth.Consumer satisfies it.
type Singer interface {
	Sing(ctx context.Context, req synth.Request) ([]byte, error)
}

// Talker reads plain text aloud. *voicevox.Client satisfies it.
type Talker interface {
	AudioQuery(ctx context.Context, text string, speaker int) (*voicevox.AudioQuery, error)
	Synthesis(ctx context.Context, query *voicevox.AudioQuery, speaker int) ([]byte, error)
}

// Enqueuer receives finished audio. *audio.Queue satisfies it.
type Enqueuer interface {
	Add(item audio.Item) error
}

type Options struct {
	// Voices used for easy notation, which has no settings block.
	EasyTeacher int
	EasySinger  int
	// Speaker reads plain text.
	Speaker int
	// Timeout bounds the synthesis of one message. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

func DefaultOptions() Options {
	return Options{EasyTeacher: 6000, EasySinger: 3001, Speaker: 3, Timeout: 5 * time.Minute}
}

// Job describes one accepted message.
type Job struct {
	ID   uuid.UUID
	Kind notation.Kind
}

type Bot struct {
	parser *notation.Parser
	singer Singer
	talker Talker
	out    Enqueuer
	opts   Options
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	// mu orders wg.Add against Close so no job starts once Close has begun.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(parser *notation.Parser, singer Singer, talker Talker, out Enqueuer, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		parser: parser,
		singer: singer,
		talker: talker,
		out:    out,
		opts:   opts,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// plan is a parsed message ready for synthesis.
type plan struct {
	job  Job
	sing *synth.Request
	text string
}

func (b *Bot) plan(text string) (*plan, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	p := &plan{job: Job{ID: uuid.New(), Kind: notation.Detect(text)}}
	switch p.job.Kind {
	case notation.KindFull:
		score, err := b.parser.ParseFull(text)
		if err != nil {
			return nil, err
		}
		shift := float64(score.VoicePitch)
		p.sing = &synth.Request{Notes: score.Notes, Teacher: score.Teacher, Singer: score.Singer, PitchShift: &shift}
	case notation.KindEasy:
		notes, err := b.parser.ParseEasy(text)
		if err != nil {
			return nil, err
		}
		p.sing = &synth.Request{Notes: notes, Teacher: b.opts.EasyTeacher, Singer: b.opts.EasySinger}
	default:
		p.text = text
	}
	return p, nil
}

func (b *Bot) render(ctx context.Context, p *plan) ([]byte, error) {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}
	if p.sing != nil {
		return b.singer.Sing(ctx, *p.sing)
	}
	q, err := b.talker.AudioQuery(ctx, p.text, b.opts.Speaker)
	if err != nil {
		return nil, fmt.Errorf("bot: audio query: %w", err)
	}
	wav, err := b.talker.Synthesis(ctx, q, b.opts.Speaker)
	if err != nil {
		return nil, fmt.Errorf("bot: synthesis: %w", err)
	}
	return wav, nil
}

// Handle parses text now and synthesizes it in the background; the result is
// queued for playback. Parse failures, including notation.ErrNotReady, are
// returned immediately. Synthesis failures are logged.
func (b *Bot) Handle(text string) (Job, error) {
	p, err := b.plan(text)
	if err != nil {
		return Job{}, err
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Job{}, ErrClosed
	}
	b.wg.Add(1)
	b.mu.Unlock()
	b.log.Info("bot: message accepted", "id", p.job.ID, "kind", p.job.Kind.String())
	go func() {
		defer b.wg.Done()
		start := time.Now()
		wav, err := b.render(b.ctx, p)
		if err != nil {
			b.log.Error("bot: synthesis failed", "id", p.job.ID, "kind", p.job.Kind.String(), "err", err)
			return
		}
		b.log.Debug("bot: synthesized", "id", p.job.ID, "bytes", len(wav), "took", time.Since(start))
		if err := b.out.Add(audio.Item{ID: p.job.ID, Label: p.job.Kind.String(), WAV: wav}); err != nil {
			b.log.Warn("bot: dropped audio", "id", p.job.ID, "err", err)
		}
	}()
	return p.job, nil
}

// Render parses and synthesizes text synchronously and returns the WAV.
func (b *Bot) Render(ctx context.Context, text string) (Job, []byte, error) {
	p, err := b.plan(text)
	if err != nil {
		return Job{}, nil, err
	}
	wav, err := b.render(ctx, p)
	if err != nil {
		return p.job, nil, err
	}
	return p.job, wav, nil
}

// Wait blocks until every background job has finished.
func (b *Bot) Wait() { b.wg.Wait() }

// Close cancels running jobs and waits for them.
func (b *Bot) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	b.wg.Wait()
}
