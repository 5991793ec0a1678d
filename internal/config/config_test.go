package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Camera.Device != "/dev/video0" {
		t.Errorf("camera device = %q, want /dev/video0", cfg.Camera.Device)
	}
	if cfg.Speech.Provider != "elevenlabs" {
		t.Errorf("speech provider = %q, want elevenlabs", cfg.Speech.Provider)
	}
	if len(cfg.Speech.Voices) == 0 {
		t.Error("expected at least one default voice")
	}
	for _, name := range []string{"open_book", "close_book", "turn_page"} {
		skill, ok := cfg.Skills[name]
		if !ok {
			t.Fatalf("missing default skill %q", name)
		}
		if skill.Policy == "" {
			t.Errorf("skill %q has empty policy", name)
		}
		if skill.DurationSeconds <= 0 {
			t.Errorf("skill %q has non-positive duration", name)
		}
	}
	if cfg.Reading.MaxSamePageRetries != 2 {
		t.Errorf("max_same_page_retries = %d, want 2", cfg.Reading.MaxSamePageRetries)
	}
	if cfg.Reading.MaxIterations != 0 {
		t.Errorf("max_iterations = %d, want 0 (unbounded)", cfg.Reading.MaxIterations)
	}
}

func TestDurationHelpers(t *testing.T) {
	skill := SkillCfg{DurationSeconds: 10}
	if got := skill.Duration(); got != 10*time.Second {
		t.Errorf("skill duration = %v, want 10s", got)
	}
	cam := CameraCfg{WarmupMS: 500}
	if got := cam.Warmup(); got != 500*time.Millisecond {
		t.Errorf("camera warmup = %v, want 500ms", got)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("BOOKBOT_TEST_KEY", "secret-123")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain-value", "plain-value"},
		{"${BOOKBOT_TEST_KEY}", "secret-123"},
		{"prefix-${BOOKBOT_TEST_KEY}-suffix", "prefix-secret-123-suffix"},
		{"${BOOKBOT_UNSET_VAR}", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal written config: %v", err)
	}
	if cfg.Vision.APIKey != "${ANTHROPIC_API_KEY}" {
		t.Errorf("vision api_key = %q, want env reference preserved", cfg.Vision.APIKey)
	}
	if cfg.Solo.Command != "solo" {
		t.Errorf("solo command = %q, want solo", cfg.Solo.Command)
	}
}

func TestManagerLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("reading:\n  mode: skim\n  max_iterations: 5\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := cm.Get()
	if cfg.Reading.Mode != "skim" {
		t.Errorf("reading mode = %q, want skim", cfg.Reading.Mode)
	}
	if cfg.Reading.MaxIterations != 5 {
		t.Errorf("max_iterations = %d, want 5", cfg.Reading.MaxIterations)
	}
	// Values absent from the file fall back to defaults.
	if cfg.Camera.Width != 1280 {
		t.Errorf("camera width = %d, want default 1280", cfg.Camera.Width)
	}
}
