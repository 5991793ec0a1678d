// Package vision exposes the robot's camera-facing perception skills:
// scene assessment, page classification, and page reading. All three are
// vision-model calls that take a JPEG frame and return either a label or
// extracted text.
package vision

import "context"

// Client is the perception surface the orchestrator consumes.
//
// Implementations must never return an "unknown" label: ambiguous model
// output is normalized to a safe default (SceneBookOpen for scenes,
// PageContent for page types) so callers can branch without a fallback arm.
type Client interface {
	// AssessScene looks at the workspace and reports its current state.
	AssessScene(ctx context.Context, image []byte) (SceneState, error)

	// ClassifyPage labels the page type of an open spread.
	ClassifyPage(ctx context.Context, image []byte) (PageType, error)

	// ReadPage extracts the text of one half of a spread.
	ReadPage(ctx context.Context, image []byte, opts ReadOptions) (string, error)

	// Name returns the client identifier (e.g. "anthropic").
	Name() string
}
