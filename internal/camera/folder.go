package camera

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FolderSource serves images from a directory in sorted filename order,
// for walking the orchestrator through a canned book without hardware.
// Once the sequence is exhausted the last image repeats, so the control
// loop never sees an end-of-input condition mid-session.
type FolderSource struct {
	dir    string
	logger *slog.Logger

	files []string
	index int
}

// NewFolderSource creates a replay source over dir.
func NewFolderSource(dir string, logger *slog.Logger) *FolderSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FolderSource{dir: dir, logger: logger}
}

// Start loads the image file list from the folder.
func (s *FolderSource) Start() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read frame directory: %w", err)
	}

	s.files = s.files[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			s.files = append(s.files, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(s.files)
	s.index = 0

	if len(s.files) == 0 {
		return fmt.Errorf("no images found in %s", s.dir)
	}
	s.logger.Info("camera: folder source loaded", "dir", s.dir, "frames", len(s.files))
	return nil
}

// Stop is a no-op for the folder source.
func (s *FolderSource) Stop() {}

// IsOpen reports whether the file list has been loaded.
func (s *FolderSource) IsOpen() bool {
	return len(s.files) > 0
}

// Grab returns the next image, clamping to the last one past the end.
func (s *FolderSource) Grab() ([]byte, error) {
	if len(s.files) == 0 {
		return nil, ErrNotOpen
	}

	idx := s.index
	if idx > len(s.files)-1 {
		idx = len(s.files) - 1
	}
	path := s.files[idx]
	s.index++

	s.logger.Debug("camera: serving replay frame",
		"frame", idx+1, "total", len(s.files), "file", filepath.Base(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	return data, nil
}
