// Package speech turns extracted page text into played-back audio. A
// Provider synthesizes one chunk of text; the Narrator splits a page into
// sentences and runs the prefetch pipeline that overlaps synthesis of the
// next sentence with playback of the current one.
package speech

import (
	"context"
	"math/rand"
)

// Provider converts text to audio bytes.
type Provider interface {
	// Synthesize returns encoded audio (mp3) for the text, using voice
	// if the backend supports per-request voices.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)

	// Name returns the provider identifier (e.g. "elevenlabs").
	Name() string
}

// Voice is a named narrator voice.
type Voice struct {
	Name string
	ID   string
}

// PickVoice randomly selects a voice from the configured map. Callers
// pick once per page so long sessions alternate narrators. Returns a
// zero Voice when the map is empty.
func PickVoice(voices map[string]string) Voice {
	if len(voices) == 0 {
		return Voice{}
	}
	names := make([]string, 0, len(voices))
	for name := range voices {
		names = append(names, name)
	}
	name := names[rand.Intn(len(names))]
	return Voice{Name: name, ID: voices[name]}
}
