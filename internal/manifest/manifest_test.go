package manifest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/voicevox"
	"github.com/cbegin/singbot/internal/voicevox/voicevoxtest"
)

var _ notation.RateSource = (*Provider)(nil)

func TestFutureResolvesOnce(t *testing.T) {
	f := NewFuture[int]()
	if _, ok := f.Get(); ok {
		t.Fatal("unresolved future reported a value")
	}
	if !f.Resolve(7) {
		t.Fatal("first Resolve should win")
	}
	if f.Resolve(9) {
		t.Fatal("second Resolve should be ignored")
	}
	if v, ok := f.Get(); !ok || v != 7 {
		t.Fatalf("Get = %d, %v, want 7, true", v, ok)
	}
	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed after Resolve")
	}
}

func TestFutureWaitersRunExactlyOnce(t *testing.T) {
	f := NewFuture[string]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.OnResolve(func(v string) {
				if v != "ok" {
					t.Errorf("waiter got %q", v)
				}
				calls.Add(1)
			})
		}()
	}
	wg.Wait()
	var resolvers sync.WaitGroup
	for i := 0; i < 4; i++ {
		resolvers.Add(1)
		go func() {
			defer resolvers.Done()
			f.Resolve("ok")
		}()
	}
	resolvers.Wait()
	if got := calls.Load(); got != 8 {
		t.Fatalf("waiters ran %d times, want 8", got)
	}

	late := false
	f.OnResolve(func(string) { late = true })
	if !late {
		t.Fatal("OnResolve after resolution should run immediately")
	}
}

type stubSource struct {
	rate  float64
	err   error
	calls atomic.Int32
}

func (s *stubSource) EngineManifest(context.Context) (*voicevox.EngineManifest, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &voicevox.EngineManifest{FrameRate: s.rate}, nil
}

func TestProviderNotReadyUntilFetched(t *testing.T) {
	src := &stubSource{rate: 93.75}
	p := NewProvider(src, nil)
	if _, ok := p.FrameRate(); ok {
		t.Fatal("provider ready before fetch")
	}
	parser := notation.NewParser(notation.DefaultConfig(), p)
	if _, err := parser.ParseFull("s c"); !errors.Is(err, notation.ErrNotReady) {
		t.Fatalf("parse before fetch: err = %v, want ErrNotReady", err)
	}

	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rate, ok := p.FrameRate(); !ok || rate != 93.75 {
		t.Fatalf("FrameRate = %v, %v, want 93.75, true", rate, ok)
	}
	if _, err := parser.ParseFull("s c"); err != nil {
		t.Fatalf("parse after fetch: %v", err)
	}

	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("manifest fetched %d times, want 1", got)
	}
}

func TestProviderRejectsBadRate(t *testing.T) {
	p := NewProvider(&stubSource{rate: 0}, nil)
	if err := p.Fetch(context.Background()); !errors.Is(err, ErrBadFrameRate) {
		t.Fatalf("err = %v, want ErrBadFrameRate", err)
	}
	if _, ok := p.FrameRate(); ok {
		t.Fatal("bad rate must not resolve the provider")
	}
	if err := p.Resolve(-1); !errors.Is(err, ErrBadFrameRate) {
		t.Fatalf("Resolve(-1) err = %v", err)
	}
}

func TestProviderFetchUntilRetries(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	engine.Fail("/engine_manifest", http.StatusServiceUnavailable)

	p := NewProvider(voicevox.NewClient(engine.URL), nil)
	ready := make(chan float64, 1)
	p.OnReady(func(rate float64) { ready <- rate })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- p.FetchUntil(ctx, 10*time.Millisecond) }()

	for len(engine.Calls("/engine_manifest")) < 2 {
		time.Sleep(5 * time.Millisecond)
	}
	engine.Fail("/engine_manifest", 0)

	if err := <-errc; err != nil {
		t.Fatalf("FetchUntil: %v", err)
	}
	if rate := <-ready; rate != 93.75 {
		t.Fatalf("OnReady rate = %v, want 93.75", rate)
	}
	<-p.Ready()
}

func TestProviderFetchUntilStopsOnCancel(t *testing.T) {
	p := NewProvider(&stubSource{err: errors.New("down")}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := p.FetchUntil(ctx, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
