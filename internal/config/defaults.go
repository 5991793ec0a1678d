package config

// DefaultConfig returns the built-in configuration. Values mirror the
// rig the arm was trained on, so a fresh install works out of the box.
func DefaultConfig() *Config {
	return &Config{
		Camera: CameraCfg{
			Device:   "/dev/video0",
			Width:    1280,
			Height:   720,
			WarmupMS: 500,
		},
		Vision: VisionCfg{
			Model:          "claude-sonnet-4-20250514",
			APIKey:         "${ANTHROPIC_API_KEY}",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		Speech: SpeechCfg{
			Provider: "elevenlabs",
			Voices: map[string]string{
				"chantal": "XyeTSqCjJXIeZoB4YnOs",
				"kwame":   "ohGUGM5CpTBCkBU3BE42",
			},
			ElevenLabs: ElevenLabsCfg{
				APIKey: "${ELEVENLABS_API_KEY}",
				Model:  "eleven_multilingual_v2",
			},
			OpenAI: OpenAICfg{
				APIKey: "${OPENAI_API_KEY}",
				Model:  "tts-1-hd",
				Voice:  "onyx",
			},
		},
		Solo: SoloCfg{
			Command:         "solo",
			FollowerID:      1,
			Camera0Angle:    "wrist",
			Camera1Angle:    "top",
			SelectedCameras: "0,1",
		},
		Skills: map[string]SkillCfg{
			"open_book": {
				Policy:          "ladybugs/OPEN_BOOK_ACT",
				DurationSeconds: 15,
				Task:            "open the book on the table",
				MaxRetries:      2,
			},
			"close_book": {
				Policy:          "ladybugs/CLOSE_BOOK_ACT",
				DurationSeconds: 15,
				Task:            "close the open book",
				MaxRetries:      2,
			},
			"turn_page": {
				Policy:          "ladybugs/TURN_PAGE_ACT",
				DurationSeconds: 10,
				Task:            "turn one page of the open book",
				MaxRetries:      2,
			},
		},
		Reading: ReadingCfg{
			Mode:               "verbose",
			MaxSamePageRetries: 2,
			MaxIterations:      0,
			LogLevel:           "info",
		},
	}
}
