package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ElevenLabsName         = "elevenlabs"
	elevenLabsAPIBaseURL   = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
)

// ElevenLabsConfig holds configuration for the ElevenLabs TTS client.
type ElevenLabsConfig struct {
	APIKey     string
	Model      string  // e.g. "eleven_multilingual_v2", "eleven_turbo_v2_5"
	Format     string  // output format, default mp3_44100_128
	Stability  float64 // voice stability (0.0-1.0, default 0.5)
	Similarity float64 // similarity boost (0.0-1.0, default 0.75)
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// ElevenLabsClient implements Provider using the ElevenLabs TTS API.
type ElevenLabsClient struct {
	apiKey     string
	model      string
	format     string
	stability  float64
	similarity float64
	baseURL    string
	client     *http.Client
}

// NewElevenLabsClient creates a new ElevenLabs TTS client.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	if cfg.Model == "" {
		cfg.Model = elevenLabsDefaultModel
	}
	if cfg.Format == "" {
		cfg.Format = "mp3_44100_128"
	}
	if cfg.Stability == 0 {
		cfg.Stability = 0.5
	}
	if cfg.Similarity == 0 {
		cfg.Similarity = 0.75
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = elevenLabsAPIBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &ElevenLabsClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		format:     cfg.Format,
		stability:  cfg.Stability,
		similarity: cfg.Similarity,
		baseURL:    cfg.BaseURL,
		client:     client,
	}
}

// Name returns the provider identifier.
func (c *ElevenLabsClient) Name() string {
	return ElevenLabsName
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsErrorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// Synthesize converts text to audio. ElevenLabs returns the audio bytes
// directly as the response body.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		return nil, fmt.Errorf("elevenlabs: voice_id is required")
	}

	body := elevenLabsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", c.baseURL, voice, c.format)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp elevenLabsErrorResponse
		errMsg := string(respBody)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail.Message != "" {
			errMsg = errResp.Detail.Message
		}
		return nil, fmt.Errorf("ElevenLabs TTS error (status %d): %s", resp.StatusCode, errMsg)
	}

	return respBody, nil
}
