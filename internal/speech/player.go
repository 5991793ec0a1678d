package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Player plays one chunk of encoded audio to completion.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// ExecPlayer shells out to the system audio player, writing each chunk to
// a temp file first. mpv on Linux, afplay on macOS.
type ExecPlayer struct {
	// Command overrides the platform default, mostly for tests.
	// The audio file path is appended as the last argument.
	Command []string

	Logger *slog.Logger

	seq int
}

// NewExecPlayer creates a player for the current platform.
func NewExecPlayer(logger *slog.Logger) *ExecPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecPlayer{Logger: logger}
}

func (p *ExecPlayer) command() []string {
	if len(p.Command) > 0 {
		return p.Command
	}
	if runtime.GOOS == "darwin" {
		return []string{"afplay"}
	}
	return []string{"mpv", "--no-video", "--no-terminal"}
}

// Play writes the audio to a temp file and blocks until playback ends.
func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	p.seq++
	path := filepath.Join(os.TempDir(), fmt.Sprintf("bookbot_speech_%d.mp3", p.seq))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	defer os.Remove(path)

	argv := append(append([]string{}, p.command()...), path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("audio player %s failed: %w (%s)", argv[0], err, out)
	}
	return nil
}
