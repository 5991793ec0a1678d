package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ladybugs/bookbot/internal/camera"
	"github.com/ladybugs/bookbot/internal/config"
	"github.com/ladybugs/bookbot/internal/motor"
	"github.com/ladybugs/bookbot/internal/speech"
	"github.com/ladybugs/bookbot/internal/vision"
)

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildSource picks the image source: a replay folder when frames is set,
// otherwise the live camera.
func buildSource(cfg *config.Config, frames string, logger *slog.Logger) (camera.Source, error) {
	if frames != "" {
		return camera.NewFolderSource(frames, logger), nil
	}
	return camera.NewLiveSource(camera.LiveConfig{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		Warmup: cfg.Camera.Warmup(),
		Logger: logger,
	})
}

// buildVision constructs the perception client from config.
func buildVision(cfg *config.Config, logger *slog.Logger) (vision.Client, error) {
	apiKey := config.ResolveEnvVars(cfg.Vision.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("vision api key is not set (check ANTHROPIC_API_KEY)")
	}
	return vision.NewAnthropicClient(vision.AnthropicConfig{
		APIKey:     apiKey,
		Model:      cfg.Vision.Model,
		Timeout:    time.Duration(cfg.Vision.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Vision.MaxRetries,
		Logger:     logger,
	}), nil
}

// buildMotor constructs the skill registry. With dryRun the simulated
// driver logs each skill instead of moving the arm.
func buildMotor(cfg *config.Config, dryRun bool, logger *slog.Logger) (*motor.Registry, error) {
	skills := make(map[string]motor.SkillConfig, len(cfg.Skills))
	for name, sc := range cfg.Skills {
		skills[name] = motor.SkillConfig{
			Policy:     sc.Policy,
			Duration:   sc.Duration(),
			Task:       sc.Task,
			MaxRetries: sc.MaxRetries,
		}
	}
	rc := motor.RegistryConfig{Skills: skills, Logger: logger}

	if dryRun {
		return motor.NewSimulatedRegistry(rc, "dry-run")
	}
	driver := motor.NewSoloDriver(motor.SoloDriverConfig{
		Command: cfg.Solo.Command,
		Params: motor.SoloParams{
			FollowerID:      cfg.Solo.FollowerID,
			Camera0Angle:    cfg.Solo.Camera0Angle,
			Camera1Angle:    cfg.Solo.Camera1Angle,
			SelectedCameras: cfg.Solo.SelectedCameras,
		},
		Logger: logger,
	})
	return motor.NewRegistry(rc, driver)
}

// buildNarrator constructs the narrator, or returns nil when silent.
func buildNarrator(cfg *config.Config, silent bool, logger *slog.Logger) (*speech.Narrator, error) {
	if silent {
		return nil, nil
	}

	var provider speech.Provider
	switch cfg.Speech.Provider {
	case "", speech.ElevenLabsName:
		provider = speech.NewElevenLabsClient(speech.ElevenLabsConfig{
			APIKey: config.ResolveEnvVars(cfg.Speech.ElevenLabs.APIKey),
			Model:  cfg.Speech.ElevenLabs.Model,
		})
	case speech.OpenAIName:
		provider = speech.NewOpenAIClient(speech.OpenAIConfig{
			APIKey: config.ResolveEnvVars(cfg.Speech.OpenAI.APIKey),
			Model:  cfg.Speech.OpenAI.Model,
			Voice:  cfg.Speech.OpenAI.Voice,
		})
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}

	return speech.NewNarrator(speech.NarratorConfig{
		Provider: provider,
		Voices:   cfg.Speech.Voices,
		Logger:   logger,
	})
}

// parseReadMode validates the --mode flag.
func parseReadMode(s string) (vision.ReadMode, error) {
	switch s {
	case "", string(vision.ModeVerbose):
		return vision.ModeVerbose, nil
	case string(vision.ModeSkim):
		return vision.ModeSkim, nil
	default:
		return "", fmt.Errorf("unknown reading mode %q (want verbose or skim)", s)
	}
}
