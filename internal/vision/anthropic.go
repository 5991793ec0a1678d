package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AnthropicName         = "anthropic"
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-20250514"

	// Label responses are a single token; read responses can be a whole page.
	labelMaxTokens = 20
	readMaxTokens  = 4096
)

// AnthropicConfig holds configuration for the Anthropic vision client.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string        // Optional (tests)
	Timeout    time.Duration // HTTP timeout per request
	MaxRetries int
	RetryDelay time.Duration // Base delay for backoff
	Logger     *slog.Logger
	HTTPClient *http.Client // Optional (tests)
}

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
	client     *http.Client
}

// NewAnthropicClient creates a new Anthropic vision client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = anthropicDefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &AnthropicClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		client:     client,
	}
}

// Name returns the client identifier.
func (c *AnthropicClient) Name() string {
	return AnthropicName
}

// AssessScene looks at the workspace and reports its current state.
// Ambiguous responses normalize to SceneBookOpen.
func (c *AnthropicClient) AssessScene(ctx context.Context, image []byte) (SceneState, error) {
	text, err := c.message(ctx, promptAssessScene, image,
		"What is the current state of the scene?", labelMaxTokens)
	if err != nil {
		return "", err
	}
	return NormalizeScene(text), nil
}

// ClassifyPage labels the page type of an open spread.
// Ambiguous responses normalize to PageContent.
func (c *AnthropicClient) ClassifyPage(ctx context.Context, image []byte) (PageType, error) {
	text, err := c.message(ctx, promptClassifyPage, image, "Classify this page.", labelMaxTokens)
	if err != nil {
		return "", err
	}
	return NormalizePageType(text), nil
}

// ReadPage extracts the text of one half of a spread.
func (c *AnthropicClient) ReadPage(ctx context.Context, image []byte, opts ReadOptions) (string, error) {
	return c.message(ctx, readPrompt(opts), image,
		"Read this book page and return the text.", readMaxTokens)
}

// NormalizeScene maps a raw model response onto a SceneState.
// Unrecognized output defaults to book_open so the loop keeps perceiving
// rather than terminating on a garbled label.
func NormalizeScene(raw string) SceneState {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range sceneStates {
		if strings.Contains(s, string(known)) {
			return known
		}
	}
	return SceneBookOpen
}

// NormalizePageType maps a raw model response onto a PageType, defaulting
// to content so an unclear label errs on the side of reading the page.
func NormalizePageType(raw string) PageType {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range pageTypes {
		if strings.Contains(s, string(known)) {
			return known
		}
	}
	return PageContent
}

// Wire types for the Messages API.

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// message sends one image+text turn and returns the model's text response.
func (c *AnthropicClient) message(ctx context.Context, system string, image []byte, ask string, maxTokens int) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicContent{
				{
					Type: "image",
					Source: &anthropicSource{
						Type:      "base64",
						MediaType: "image/jpeg",
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: ask},
			},
		}},
	}

	resp, err := c.doRequest(ctx, "/messages", &reqBody)
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic returned empty content")
	}
	return resp.Content[0].Text, nil
}

// doRequest makes an HTTP request to the Messages API with retry logic.
func (c *AnthropicClient) doRequest(ctx context.Context, path string, body *anthropicRequest) (*anthropicResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	requestID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// Check context before each attempt
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicAPIVersion)
		req.Header.Set("X-Request-ID", requestID)

		resp, err := c.client.Do(req)
		if err != nil {
			// Network error - retry
			lastErr = fmt.Errorf("request failed: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			lastErr = fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
			c.logger.Warn("vision: retryable API error",
				"status", resp.StatusCode, "attempt", attempt+1, "request_id", requestID)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		// Non-retryable error
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
		}

		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if apiResp.Error != nil {
			return nil, fmt.Errorf("anthropic error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
		}
		return &apiResp, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// shouldRetry returns true for status codes that should be retried.
func (c *AnthropicClient) shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	case 529: // Anthropic "overloaded"
		return true
	default:
		return false
	}
}

// sleepWithJitter waits before the next attempt with exponential backoff
// and -20%/+30% jitter, respecting context cancellation.
func (c *AnthropicClient) sleepWithJitter(ctx context.Context, attempt int) {
	baseDelay := c.retryDelay * time.Duration(1<<attempt)
	if baseDelay > 10*time.Second {
		baseDelay = 10 * time.Second
	}

	jitter := time.Duration(float64(baseDelay) * (0.8 + 0.5*float64(time.Now().UnixNano()%1000)/1000))

	select {
	case <-ctx.Done():
	case <-time.After(jitter):
	}
}
