package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cbegin/singbot/internal/voicevox"
)

type Config struct {
	VoicevoxURL  string
	Addr         string
	Teacher      int
	Singer       int
	EasyTeacher  int
	EasySinger   int
	Speaker      int
	SplitPhrases bool
	LogLevel     slog.Level
	SampleRate   int
}

func Default() Config {
	return Config{
		VoicevoxURL: voicevox.DefaultURL,
		Addr:        ":8080",
		Teacher:     6000,
		Singer:      3001,
		EasyTeacher: 6000,
		EasySinger:  3001,
		Speaker:     3,
		LogLevel:    slog.LevelInfo,
		SampleRate:  24000,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds a Config from it. Missing files are fine.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	if v := getenv("VOICEVOX_URL"); v != "" {
		cfg.VoicevoxURL = v
	}
	if v := getenv("SINGBOT_ADDR"); v != "" {
		cfg.Addr = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SINGBOT_TEACHER", &cfg.Teacher},
		{"SINGBOT_SINGER", &cfg.Singer},
		{"SINGBOT_EASY_TEACHER", &cfg.EasyTeacher},
		{"SINGBOT_EASY_SINGER", &cfg.EasySinger},
		{"SINGBOT_SPEAKER", &cfg.Speaker},
		{"SINGBOT_SAMPLE_RATE", &cfg.SampleRate},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", e.key, err)
		}
		*e.dst = n
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("config: SINGBOT_SAMPLE_RATE must be positive, got %d", cfg.SampleRate)
	}

	if v := getenv("SINGBOT_SPLIT_PHRASES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: SINGBOT_SPLIT_PHRASES: %w", err)
		}
		cfg.SplitPhrases = b
	}
	if v := getenv("SINGBOT_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return nil, fmt.Errorf("config: SINGBOT_LOG_LEVEL: %w", err)
		}
	}
	return &cfg, nil
}
