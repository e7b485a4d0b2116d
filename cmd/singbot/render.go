package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/singbot/internal/bot"
	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/synth"
	"github.com/cbegin/singbot/internal/voicevox"
)

var renderOpts struct {
	file string
	out  string
}

func init() {
	renderCmd.Flags().StringVarP(&renderOpts.file, "file", "f", "", `read the text from a file ("-" for stdin)`)
	renderCmd.Flags().StringVarP(&renderOpts.out, "out", "o", "out.wav", "output WAV path")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [text]",
	Short: "Sing or speak text through the engine into a WAV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args, renderOpts.file)
		if err != nil {
			return err
		}
		var rates notation.RateSource
		if notation.Detect(text) != notation.KindPlain {
			if rates, err = frameRate(cmd.Context(), 0); err != nil {
				return err
			}
		}
		client := voicevox.NewClient(cfg.VoicevoxURL)
		consumer := synth.NewConsumer(client, synth.Options{SplitPhrases: cfg.SplitPhrases, Logger: logger})
		b := bot.New(notation.NewParser(parserConfig(), rates), consumer, client, nil, bot.Options{
			EasyTeacher: cfg.EasyTeacher,
			EasySinger:  cfg.EasySinger,
			Speaker:     cfg.Speaker,
			Logger:      logger,
		})
		defer b.Close()

		job, wav, err := b.Render(cmd.Context(), text)
		if err != nil {
			return err
		}
		if err := os.WriteFile(renderOpts.out, wav, 0o644); err != nil {
			return err
		}
		logger.Info("render: wrote", "path", renderOpts.out, "kind", job.Kind.String(), "bytes", len(wav))
		return nil
	},
}
