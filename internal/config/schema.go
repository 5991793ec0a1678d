package config

import "time"

// Config holds bookbot configuration.
// Stored at: ./config.yaml or ~/.bookbot/config.yaml
type Config struct {
	Camera  CameraCfg           `mapstructure:"camera" yaml:"camera"`
	Vision  VisionCfg           `mapstructure:"vision" yaml:"vision"`
	Speech  SpeechCfg           `mapstructure:"speech" yaml:"speech"`
	Solo    SoloCfg             `mapstructure:"solo" yaml:"solo"`
	Skills  map[string]SkillCfg `mapstructure:"skills" yaml:"skills"`
	Reading ReadingCfg          `mapstructure:"reading" yaml:"reading"`
}

// CameraCfg configures the live image source.
type CameraCfg struct {
	Device   string `mapstructure:"device" yaml:"device"` // V4L2 device path
	Width    int    `mapstructure:"width" yaml:"width"`
	Height   int    `mapstructure:"height" yaml:"height"`
	WarmupMS int    `mapstructure:"warmup_ms" yaml:"warmup_ms"` // settle time after open
}

// VisionCfg configures the perception client.
type VisionCfg struct {
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// SpeechCfg configures narration.
type SpeechCfg struct {
	Provider   string            `mapstructure:"provider" yaml:"provider"` // "elevenlabs" or "openai"
	Voices     map[string]string `mapstructure:"voices" yaml:"voices"`     // display name -> voice ID
	ElevenLabs ElevenLabsCfg     `mapstructure:"elevenlabs" yaml:"elevenlabs"`
	OpenAI     OpenAICfg         `mapstructure:"openai" yaml:"openai"`
}

// ElevenLabsCfg configures the ElevenLabs TTS backend.
type ElevenLabsCfg struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model  string `mapstructure:"model" yaml:"model"`
}

// OpenAICfg configures the OpenAI TTS backend.
type OpenAICfg struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model  string `mapstructure:"model" yaml:"model"`
	Voice  string `mapstructure:"voice" yaml:"voice"`
}

// SoloCfg holds the hardware-setup answers for the Solo CLI dialogue.
type SoloCfg struct {
	Command         string `mapstructure:"command" yaml:"command"`
	FollowerID      int    `mapstructure:"follower_id" yaml:"follower_id"`
	Camera0Angle    string `mapstructure:"camera_0_angle" yaml:"camera_0_angle"`
	Camera1Angle    string `mapstructure:"camera_1_angle" yaml:"camera_1_angle"`
	SelectedCameras string `mapstructure:"selected_cameras" yaml:"selected_cameras"`
}

// SkillCfg configures one trained motor skill.
type SkillCfg struct {
	Policy          string `mapstructure:"policy" yaml:"policy"`
	DurationSeconds int    `mapstructure:"duration_seconds" yaml:"duration_seconds"`
	Task            string `mapstructure:"task" yaml:"task"`
	MaxRetries      int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// ReadingCfg tunes the control loop.
type ReadingCfg struct {
	Mode               string `mapstructure:"mode" yaml:"mode"` // "verbose" or "skim"
	MaxSamePageRetries int    `mapstructure:"max_same_page_retries" yaml:"max_same_page_retries"`
	MaxIterations      int    `mapstructure:"max_iterations" yaml:"max_iterations"` // 0 = unbounded
	LogLevel           string `mapstructure:"log_level" yaml:"log_level"`
}

// Duration returns the skill's duration as a time.Duration.
func (s SkillCfg) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// Warmup returns the camera warmup as a time.Duration.
func (c CameraCfg) Warmup() time.Duration {
	return time.Duration(c.WarmupMS) * time.Millisecond
}
