package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/singbot/internal/config"
	"github.com/cbegin/singbot/internal/notation"
)

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

var (
	cfg      *config.Config
	envFiles []string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "singbot",
	Short:         "Sings chat messages written in score notation",
	Long:          `singbot turns chat messages into song through a VOICEVOX engine. Messages in full or easy score notation are sung; anything else is read aloud.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFiles...)
		if err != nil {
			return err
		}
		if logLevel != "" {
			if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
		}
		initLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "dotenv files to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides SINGBOT_LOG_LEVEL)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(level slog.Level) {
	debug := level <= slog.LevelDebug
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func parserConfig() notation.Config {
	pcfg := notation.DefaultConfig()
	pcfg.Teacher = cfg.Teacher
	pcfg.Singer = cfg.Singer
	pcfg.Logger = logger
	return pcfg
}

// readInput joins args, or reads path when no args are given.
func readInput(args []string, path string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("no text given: pass it as arguments or with --file")
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
