package vision

import (
	"context"
	"sync"
)

const MockClientName = "mock"

// MockClient is a Client for testing. Scene states and page types are
// served from configurable queues; once a queue is exhausted the last
// value repeats, mirroring how a real scene settles into a final state.
type MockClient struct {
	mu sync.Mutex

	// Queued responses. Empty queues fall back to the defaults below.
	Scenes []SceneState
	Pages  []PageType

	DefaultScene SceneState
	DefaultPage  PageType
	ReadText     string

	// Err, when set, is returned by every call.
	Err error

	// Call counters.
	AssessCalls   int
	ClassifyCalls int
	ReadCalls     []ReadOptions
}

// NewMockClient creates a mock that reports an open book with content pages.
func NewMockClient() *MockClient {
	return &MockClient{
		DefaultScene: SceneBookOpen,
		DefaultPage:  PageContent,
		ReadText:     "mock page text",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// AssessScene pops the next queued scene state.
func (c *MockClient) AssessScene(ctx context.Context, image []byte) (SceneState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AssessCalls++
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Scenes) > 0 {
		s := c.Scenes[0]
		if len(c.Scenes) > 1 {
			c.Scenes = c.Scenes[1:]
		} else {
			c.Scenes = nil
			c.DefaultScene = s
		}
		return s, nil
	}
	return c.DefaultScene, nil
}

// ClassifyPage pops the next queued page type.
func (c *MockClient) ClassifyPage(ctx context.Context, image []byte) (PageType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ClassifyCalls++
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Pages) > 0 {
		p := c.Pages[0]
		if len(c.Pages) > 1 {
			c.Pages = c.Pages[1:]
		} else {
			c.Pages = nil
			c.DefaultPage = p
		}
		return p, nil
	}
	return c.DefaultPage, nil
}

// ReadPage records the call and returns the canned text.
func (c *MockClient) ReadPage(ctx context.Context, image []byte, opts ReadOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	c.ReadCalls = append(c.ReadCalls, opts)
	return c.ReadText, nil
}
