package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSessionSavesSpreadArtifacts(t *testing.T) {
	s, err := NewSession(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	err = s.SaveSpread(1, []byte("jpeg-bytes"), "content", "book_open", "left text", "right text")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"spread_001_frame.jpg",
		"spread_001_left.txt",
		"spread_001_right.txt",
		"spread_001_meta.txt",
	} {
		if _, err := os.Stat(filepath.Join(s.Dir(), name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	meta, err := os.ReadFile(filepath.Join(s.Dir(), "spread_001_meta.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"scene_state: book_open", "page_type: content", "has_left: true", "has_right: true"} {
		if !strings.Contains(string(meta), want) {
			t.Errorf("meta missing %q:\n%s", want, meta)
		}
	}
}

func TestSessionSkippedSpreadHasNoTextFiles(t *testing.T) {
	s, err := NewSession(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSpread(2, []byte("jpeg"), "blank", "book_open", "", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "spread_002_left.txt")); !os.IsNotExist(err) {
		t.Error("left text file should not exist for a skipped spread")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "spread_002_frame.jpg")); err != nil {
		t.Error("frame should still be saved for a skipped spread")
	}
}

func TestFinalizeWritesTranscript(t *testing.T) {
	s, err := NewSession(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveSpread(1, []byte("f1"), "content", "book_open", "page one left", "page one right")
	s.SaveSpread(2, []byte("f2"), "content", "book_open", "page two left", "")

	dir, err := s.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	transcript, err := os.ReadFile(filepath.Join(dir, "session.txt"))
	if err != nil {
		t.Fatal(err)
	}
	got := string(transcript)
	if !strings.Contains(got, "page one left") || !strings.Contains(got, "page two left") {
		t.Errorf("transcript incomplete:\n%s", got)
	}
	if strings.Count(got, "---") != 2 {
		t.Errorf("transcript has %d separators, want 2", strings.Count(got, "---"))
	}
}

func TestFinalizeWithNoTextWritesNothing(t *testing.T) {
	s, err := NewSession(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	dir, err := s.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.txt")); !os.IsNotExist(err) {
		t.Error("session.txt should not exist for an empty session")
	}
}
