package speech

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// SplitSentences breaks page text into sentence-sized chunks for
// synthesis. Trailing text without terminal punctuation becomes the last
// chunk.
func SplitSentences(text string) []string {
	var out []string
	rest := text
	for {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			break
		}
		sentence := strings.TrimSpace(rest[:loc[1]])
		rest = rest[loc[1]:]
		if sentence != "" {
			out = append(out, sentence)
		}
	}
	if tail := strings.TrimSpace(rest); tail != "" {
		out = append(out, tail)
	}
	return out
}

// NarratorConfig configures a Narrator.
type NarratorConfig struct {
	Provider Provider
	Player   Player
	Voices   map[string]string // display name -> voice ID
	Logger   *slog.Logger
}

// Narrator speaks page text sentence by sentence with a prefetch
// pipeline: while one sentence plays, the next one's audio is already
// being synthesized. Speak blocks until every sentence has finished
// playing, so callers see a fully synchronous narration call.
type Narrator struct {
	provider Provider
	player   Player
	voices   map[string]string
	logger   *slog.Logger
}

// NewNarrator creates a narrator.
func NewNarrator(cfg NarratorConfig) (*Narrator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("speech: provider is required")
	}
	if cfg.Player == nil {
		cfg.Player = NewExecPlayer(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Narrator{
		provider: cfg.Provider,
		player:   cfg.Player,
		voices:   cfg.Voices,
		logger:   cfg.Logger,
	}, nil
}

type audioChunk struct {
	audio []byte
	text  string
}

// Speak narrates the text and blocks until playback completes.
// Sentences are played strictly in order.
func (n *Narrator) Speak(ctx context.Context, text string) error {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	voice := PickVoice(n.voices)
	n.logger.Info("speech: narrating",
		"provider", n.provider.Name(), "voice", voice.Name, "sentences", len(sentences))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffer of one: the synthesizer stays exactly one sentence ahead of
	// the player.
	chunks := make(chan audioChunk, 1)
	synthErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		for _, sentence := range sentences {
			audio, err := n.provider.Synthesize(ctx, sentence, voice.ID)
			if err != nil {
				synthErr <- fmt.Errorf("synthesis failed: %w", err)
				return
			}
			select {
			case chunks <- audioChunk{audio: audio, text: sentence}:
			case <-ctx.Done():
				synthErr <- ctx.Err()
				return
			}
		}
		synthErr <- nil
	}()

	for chunk := range chunks {
		if err := n.player.Play(ctx, chunk.audio); err != nil {
			cancel()
			<-synthErr // wait for the synthesizer to notice
			return fmt.Errorf("playback failed: %w", err)
		}
		n.logger.Debug("speech: played sentence", "chars", len(chunk.text))
	}
	return <-synthErr
}
