// Package manifest resolves the engine frame rate once and hands it to the parsers.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cbegin/singbot/internal/voicevox"
)

var ErrBadFrameRate = errors.New("manifest: engine reported a non-positive frame rate")

// Source returns the engine manifest. *voicevox.Client satisfies it.
type Source interface {
	EngineManifest(ctx context.Context) (*voicevox.EngineManifest, error)
}

// Provider owns the one-shot frame rate. It satisfies notation.RateSource.
type Provider struct {
	src  Source
	rate *Future[float64]
	log  *slog.Logger
}

func NewProvider(src Source, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{src: src, rate: NewFuture[float64](), log: log}
}

// Fetch reads the manifest once and resolves the frame rate. Calling it after
// the rate is known is a no-op.
func (p *Provider) Fetch(ctx context.Context) error {
	if _, ok := p.rate.Get(); ok {
		return nil
	}
	m, err := p.src.EngineManifest(ctx)
	if err != nil {
		return fmt.Errorf("manifest: fetch: %w", err)
	}
	if !(m.FrameRate > 0) {
		return fmt.Errorf("%w: %v", ErrBadFrameRate, m.FrameRate)
	}
	if p.rate.Resolve(m.FrameRate) {
		p.log.Info("manifest: frame rate resolved", "engine", m.Name, "frame_rate", m.FrameRate)
	}
	return nil
}

// FetchUntil retries Fetch every interval until it succeeds or ctx ends.
func (p *Provider) FetchUntil(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := p.Fetch(ctx)
		if err == nil {
			return nil
		}
		p.log.Warn("manifest: fetch failed, retrying", "err", err, "interval", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Resolve sets the frame rate directly, for callers that know it without
// asking the engine.
func (p *Provider) Resolve(rate float64) error {
	if !(rate > 0) {
		return fmt.Errorf("%w: %v", ErrBadFrameRate, rate)
	}
	p.rate.Resolve(rate)
	return nil
}

func (p *Provider) FrameRate() (float64, bool) { return p.rate.Get() }

// Ready is closed once the frame rate is known.
func (p *Provider) Ready() <-chan struct{} { return p.rate.Done() }

// OnReady runs fn with the frame rate once it is known.
func (p *Provider) OnReady(fn func(rate float64)) { p.rate.OnResolve(fn) }
