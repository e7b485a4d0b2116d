package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbegin/singbot/internal/audio"
	"github.com/cbegin/singbot/internal/bot"
	"github.com/cbegin/singbot/internal/effects"
	"github.com/cbegin/singbot/internal/httpapi"
	"github.com/cbegin/singbot/internal/manifest"
	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/synth"
	"github.com/cbegin/singbot/internal/voicevox"
)

var serveOpts struct {
	effects string
	sinkDir string
	origins []string
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.effects, "effects", effects.VoicePreset, `speaker effect chain, or "none"`)
	serveCmd.Flags().StringVar(&serveOpts.sinkDir, "sink", "", "write WAV files to this directory instead of playing them")
	serveCmd.Flags().StringSliceVar(&serveOpts.origins, "cors-origin", []string{"*"}, "allowed CORS origins")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and play sung messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	client := voicevox.NewClient(cfg.VoicevoxURL)
	version, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("engine at %s is not reachable: %w", cfg.VoicevoxURL, err)
	}
	logger.Info("serve: engine connected", "url", cfg.VoicevoxURL, "version", version)

	provider := manifest.NewProvider(client, logger)
	go func() {
		if err := provider.FetchUntil(ctx, 5*time.Second); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("serve: manifest unavailable", "err", err)
		}
	}()

	sink, err := newSink()
	if err != nil {
		return err
	}
	queue := audio.NewQueue(sink, audio.WithQueueLogger(logger))
	defer queue.Close()

	parser := notation.NewParser(parserConfig(), provider)
	consumer := synth.NewConsumer(client, synth.Options{SplitPhrases: cfg.SplitPhrases, Logger: logger})
	b := bot.New(parser, consumer, client, queue, bot.Options{
		EasyTeacher: cfg.EasyTeacher,
		EasySinger:  cfg.EasySinger,
		Speaker:     cfg.Speaker,
		Timeout:     bot.DefaultOptions().Timeout,
		Logger:      logger,
	})
	defer b.Close()

	api := httpapi.NewServer(b, parser, provider,
		httpapi.WithLogger(logger),
		httpapi.WithAllowedOrigins(serveOpts.origins...),
	)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serve: listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSink() (audio.Sink, error) {
	if serveOpts.sinkDir != "" {
		if err := os.MkdirAll(serveOpts.sinkDir, 0o755); err != nil {
			return nil, err
		}
		return audio.DirSink{Dir: serveOpts.sinkDir}, nil
	}
	chain, err := effects.Parse(serveOpts.effects, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return audio.NewSpeaker(cfg.SampleRate, audio.WithEffects(chain), audio.WithSpeakerLogger(logger)), nil
}
