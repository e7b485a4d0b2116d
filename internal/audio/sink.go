package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes each item to Dir as <id>.wav instead of playing it.
type DirSink struct {
	Dir string
}

func (s DirSink) Play(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, item.ID.String()+".wav"), item.WAV, 0o644)
}

// Discard drops every item.
type Discard struct{}

func (Discard) Play(context.Context, Item) error { return nil }
