package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/singbot"
	"github.com/cbegin/singbot/internal/notation"
)

var previewOpts struct {
	file      string
	out       string
	frameRate float64
	effects   string
}

func init() {
	previewCmd.Flags().StringVarP(&previewOpts.file, "file", "f", "", `read the score from a file ("-" for stdin)`)
	previewCmd.Flags().StringVarP(&previewOpts.out, "out", "o", "", "write a float WAV here instead of playing")
	previewCmd.Flags().Float64Var(&previewOpts.frameRate, "frame-rate", 93.75, "engine frame rate the score is timed against")
	previewCmd.Flags().StringVar(&previewOpts.effects, "effects", "none", "speaker effect chain")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [text]",
	Short: "Play a score as a guide tone without the engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args, previewOpts.file)
		if err != nil {
			return err
		}
		if previewOpts.out != "" {
			compiled, err := singbot.CompileWith(notation.NewParser(parserConfig(), notation.FixedRate(previewOpts.frameRate)), text)
			if err != nil {
				return err
			}
			samples, err := singbot.RenderGuide(compiled.Notes, previewOpts.frameRate, cfg.SampleRate)
			if err != nil {
				return err
			}
			return os.WriteFile(previewOpts.out, singbot.EncodeWAVFloat32LE(samples, cfg.SampleRate, 2), 0o644)
		}

		pl, err := singbot.NewPlayer(cfg.SampleRate,
			singbot.WithFrameRate(previewOpts.frameRate),
			singbot.WithEffects(previewOpts.effects),
			singbot.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		compiled, err := pl.Preview(cmd.Context(), text)
		if err != nil {
			return err
		}
		logger.Info("preview: done", "kind", compiled.Kind.String(), "notes", len(compiled.Notes))
		return nil
	},
}
