package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/singbot"
	"github.com/cbegin/singbot/internal/manifest"
	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/synth"
	"github.com/cbegin/singbot/internal/voicevox"
)

var parseOpts struct {
	file      string
	frameRate float64
}

func init() {
	parseCmd.Flags().StringVarP(&parseOpts.file, "file", "f", "", `read the score from a file ("-" for stdin)`)
	parseCmd.Flags().Float64Var(&parseOpts.frameRate, "frame-rate", 0, "engine frame rate; fetched from the engine when 0")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Print the notes a score parses to, as engine JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args, parseOpts.file)
		if err != nil {
			return err
		}
		rates, err := frameRate(cmd.Context(), parseOpts.frameRate)
		if err != nil {
			return err
		}
		compiled, err := singbot.CompileWith(notation.NewParser(parserConfig(), rates), text)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"kind":        compiled.Kind.String(),
			"teacher":     compiled.Teacher,
			"singer":      compiled.Singer,
			"voice_pitch": compiled.VoicePitch,
			"frames":      compiled.Frames(),
			"notes":       synth.WireNotes(compiled.Notes),
		})
	},
}

// frameRate returns a fixed rate, or asks the engine when rate is 0.
func frameRate(ctx context.Context, rate float64) (notation.RateSource, error) {
	if rate > 0 {
		return notation.FixedRate(rate), nil
	}
	provider := manifest.NewProvider(voicevox.NewClient(cfg.VoicevoxURL), logger)
	if err := provider.Fetch(ctx); err != nil {
		return nil, err
	}
	return provider, nil
}
