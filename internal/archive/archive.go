// Package archive persists reading-session artifacts: each spread's camera
// frame, the extracted text, and a concatenated transcript of the whole
// book.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session writes one reading session's artifacts under a dedicated
// directory:
//
//	<base>/<timestamp>_<id>/
//	  spread_001_frame.jpg
//	  spread_001_left.txt
//	  spread_001_right.txt
//	  spread_001_meta.txt
//	  ...
//	  session.txt
type Session struct {
	dir      string
	logger   *slog.Logger
	fullText []string
}

// NewSession creates a session rooted at base. The directory is created
// eagerly so a failure surfaces before the control loop starts.
func NewSession(base string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	stamp := time.Now().Format("2006-01-02_150405")
	id := uuid.New().String()[:8]
	dir := filepath.Join(base, fmt.Sprintf("%s_%s", stamp, id))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	logger.Info("archive: session started", "dir", dir)
	return &Session{dir: dir, logger: logger}, nil
}

// Dir returns the session directory path.
func (s *Session) Dir() string {
	return s.dir
}

// SaveSpread writes one spread's frame, texts and metadata.
func (s *Session) SaveSpread(spread int, frame []byte, pageType, sceneState, leftText, rightText string) error {
	prefix := fmt.Sprintf("spread_%03d", spread)

	if err := os.WriteFile(filepath.Join(s.dir, prefix+"_frame.jpg"), frame, 0o644); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}

	if leftText != "" {
		if err := os.WriteFile(filepath.Join(s.dir, prefix+"_left.txt"), []byte(leftText), 0o644); err != nil {
			return fmt.Errorf("failed to save left text: %w", err)
		}
		s.fullText = append(s.fullText, leftText)
	}
	if rightText != "" {
		if err := os.WriteFile(filepath.Join(s.dir, prefix+"_right.txt"), []byte(rightText), 0o644); err != nil {
			return fmt.Errorf("failed to save right text: %w", err)
		}
		s.fullText = append(s.fullText, rightText)
	}

	meta := fmt.Sprintf("scene_state: %s\npage_type: %s\nhas_left: %t\nhas_right: %t\n",
		sceneState, pageType, leftText != "", rightText != "")
	if err := os.WriteFile(filepath.Join(s.dir, prefix+"_meta.txt"), []byte(meta), 0o644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	s.logger.Info("archive: saved spread",
		"spread", spread, "page_type", pageType,
		"left_chars", len(leftText), "right_chars", len(rightText))
	return nil
}

// Finalize writes the concatenated session transcript and returns the
// session directory.
func (s *Session) Finalize() (string, error) {
	if len(s.fullText) > 0 {
		text := strings.Join(s.fullText, "\n\n---\n\n")
		if err := os.WriteFile(filepath.Join(s.dir, "session.txt"), []byte(text), 0o644); err != nil {
			return "", fmt.Errorf("failed to write session transcript: %w", err)
		}
		s.logger.Info("archive: wrote transcript",
			"sections", len(s.fullText), "chars", len(text))
	}
	return s.dir, nil
}
