// Package orchestrator runs the autonomous book-reading loop: assess the
// scene, execute the appropriate motor or perception skill, repeat until
// the book is finished or gone.
//
// State transitions:
//
//	no_book     -> done (nothing to do)
//	book_closed -> open_book -> re-assess
//	book_open   -> classify -> read_left -> read_right -> turn_page -> re-assess
//	book_done   -> close_book -> done
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ladybugs/bookbot/internal/archive"
	"github.com/ladybugs/bookbot/internal/camera"
	"github.com/ladybugs/bookbot/internal/motor"
	"github.com/ladybugs/bookbot/internal/vision"
)

// DefaultMaxSamePageRetries is how many extra turn attempts are made when
// the frame fingerprint says the page did not change.
const DefaultMaxSamePageRetries = 2

// ErrOpenBookFailed aborts the session: without an open book nothing else
// can proceed.
var ErrOpenBookFailed = errors.New("open_book skill failed")

// ErrIterationBudget is returned when the optional safety bound on loop
// iterations is exhausted before a terminal scene state was observed.
var ErrIterationBudget = errors.New("iteration budget exhausted without terminal state")

// Narrator speaks one page's text and blocks until playback completes.
// A nil narrator means silent mode.
type Narrator interface {
	Speak(ctx context.Context, text string) error
}

// Config assembles an Orchestrator. Source, Vision and Motor are
// required; Narrator and Archive are optional.
type Config struct {
	Source   camera.Source
	Vision   vision.Client
	Motor    *motor.Registry
	Narrator Narrator
	Archive  *archive.Session

	// Mode selects verbose or skim reading.
	Mode vision.ReadMode

	// DryRun skips fingerprint verification after page turns: a
	// simulated arm never changes the frame, so same-page detection
	// would always fire.
	DryRun bool

	// MaxSamePageRetries bounds extra turn attempts on an unchanged
	// fingerprint. Defaults to DefaultMaxSamePageRetries.
	MaxSamePageRetries int

	// MaxIterations bounds the control loop as a safety net against a
	// scene classifier that never reaches a terminal state. 0 means
	// unbounded.
	MaxIterations int

	Logger *slog.Logger
}

// Orchestrator owns the control loop state for one reading session.
type Orchestrator struct {
	source   camera.Source
	vision   vision.Client
	motor    *motor.Registry
	narrator Narrator
	arch     *archive.Session

	mode          vision.ReadMode
	dryRun        bool
	samePageRetry int
	maxIterations int
	logger        *slog.Logger
	spreadCount   int
}

// New validates the configuration and builds an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("orchestrator: image source is required")
	}
	if cfg.Vision == nil {
		return nil, fmt.Errorf("orchestrator: vision client is required")
	}
	if cfg.Motor == nil {
		return nil, fmt.Errorf("orchestrator: motor registry is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = vision.ModeVerbose
	}
	if cfg.MaxSamePageRetries <= 0 {
		cfg.MaxSamePageRetries = DefaultMaxSamePageRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		source:        cfg.Source,
		vision:        cfg.Vision,
		motor:         cfg.Motor,
		narrator:      cfg.Narrator,
		arch:          cfg.Archive,
		mode:          cfg.Mode,
		dryRun:        cfg.DryRun,
		samePageRetry: cfg.MaxSamePageRetries,
		maxIterations: cfg.MaxIterations,
		logger:        cfg.Logger,
	}, nil
}

// SpreadCount returns how many spreads the session has visited.
func (o *Orchestrator) SpreadCount() int {
	return o.spreadCount
}

// Run executes the reading loop until a terminal scene state is observed.
// It returns an error only for conditions that abort the session: context
// cancellation, image source failure, perception transport failure, a
// failed open_book, or an exhausted iteration budget.
func (o *Orchestrator) Run(ctx context.Context) error {
	label := "autonomous"
	if o.dryRun {
		label = "dry-run"
	}
	o.logger.Info("orchestrator: session starting", "mode", o.mode, "run", label)

	for iteration := 1; ; iteration++ {
		if o.maxIterations > 0 && iteration > o.maxIterations {
			return fmt.Errorf("%w (after %d iterations)", ErrIterationBudget, o.maxIterations)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := o.source.Grab()
		if err != nil {
			return fmt.Errorf("frame grab failed: %w", err)
		}
		state, err := o.vision.AssessScene(ctx, frame)
		if err != nil {
			return fmt.Errorf("scene assessment failed: %w", err)
		}
		o.logger.Info("orchestrator: scene assessed", "state", state)

		switch state {
		case vision.SceneNoBook:
			o.logger.Info("orchestrator: no book detected, done")
			return nil

		case vision.SceneBookClosed:
			o.logger.Info("orchestrator: book closed, opening")
			skill, err := o.motor.Get(motor.SkillOpenBook)
			if err != nil {
				return err
			}
			if !skill.Execute(ctx) {
				return ErrOpenBookFailed
			}

		case vision.SceneBookOpen:
			if err := o.readSpread(ctx); err != nil {
				return err
			}

		case vision.SceneBookDone:
			o.logger.Info("orchestrator: last page reached, closing book")
			skill, err := o.motor.Get(motor.SkillCloseBook)
			if err != nil {
				return err
			}
			// The session ends either way; a failed close is only logged.
			if !skill.Execute(ctx) {
				o.logger.Warn("orchestrator: close_book failed, ending session anyway")
			}
			o.logger.Info("orchestrator: book reading complete", "spreads", o.spreadCount)
			return nil

		default:
			return fmt.Errorf("orchestrator: unexpected scene state %q", state)
		}
	}
}

// readSpread reads the current two-page spread, then turns the page.
func (o *Orchestrator) readSpread(ctx context.Context) error {
	o.spreadCount++
	o.logger.Info("orchestrator: reading spread", "spread", o.spreadCount)

	// Fresh frame for classification and reading. Not guaranteed to be
	// the same physical frame as the assess grab; consistency is not
	// required, only plausibility of the read content.
	frame, err := o.source.Grab()
	if err != nil {
		return fmt.Errorf("frame grab failed: %w", err)
	}

	pageType, err := o.vision.ClassifyPage(ctx, frame)
	if err != nil {
		return fmt.Errorf("page classification failed: %w", err)
	}
	o.logger.Info("orchestrator: page classified", "type", pageType)

	var leftText, rightText string
	if pageType.Skippable() {
		o.logger.Info("orchestrator: skipping page", "type", pageType)
	} else {
		// Left page fully reads (and narrates) before the right page
		// begins: natural reading order, single audio channel.
		if leftText, err = o.readHalf(ctx, frame, vision.HalfLeft); err != nil {
			return err
		}
		if rightText, err = o.readHalf(ctx, frame, vision.HalfRight); err != nil {
			return err
		}
	}

	if o.arch != nil {
		if err := o.arch.SaveSpread(o.spreadCount, frame, string(pageType),
			string(vision.SceneBookOpen), leftText, rightText); err != nil {
			o.logger.Warn("orchestrator: archive write failed", "error", err)
		}
	}

	turned, err := o.turnWithVerification(ctx)
	if err != nil {
		return err
	}
	if !turned {
		o.logger.Error("orchestrator: turn_page motor skill failed")
	}
	o.logger.Info("orchestrator: end of spread", "spread", o.spreadCount)
	return nil
}

// readHalf extracts one half of the spread and narrates it if a narrator
// is attached. Narration failure degrades to text-only.
func (o *Orchestrator) readHalf(ctx context.Context, frame []byte, half vision.PageHalf) (string, error) {
	o.logger.Info("orchestrator: reading page half", "half", half)
	text, err := o.vision.ReadPage(ctx, frame, vision.ReadOptions{Half: half, Mode: o.mode})
	if err != nil {
		return "", fmt.Errorf("read %s page failed: %w", half, err)
	}
	if o.narrator != nil {
		if err := o.narrator.Speak(ctx, text); err != nil {
			o.logger.Warn("orchestrator: narration failed, continuing silently", "error", err)
		}
	}
	return text, nil
}

// turnWithVerification turns the page and confirms via frame fingerprint
// that it actually changed. The "before" fingerprint is captured exactly
// once; every retry compares against the original starting frame, not the
// previous attempt's result. After exhausting retries on an unchanged
// page the routine gives up but still reports success, accepting the risk
// of a duplicated or missed page rather than stalling the session.
//
// The returned bool is false only when the turn_page skill itself failed,
// in which case no fingerprint comparison was attempted.
func (o *Orchestrator) turnWithVerification(ctx context.Context) (bool, error) {
	var before camera.Fingerprint
	if !o.dryRun {
		frame, err := o.source.Grab()
		if err != nil {
			return false, fmt.Errorf("frame grab failed: %w", err)
		}
		before = camera.FingerprintFrame(frame)
	}

	skill, err := o.motor.Get(motor.SkillTurnPage)
	if err != nil {
		return false, err
	}

	for attempt := 1; attempt <= o.samePageRetry+1; attempt++ {
		o.logger.Info("orchestrator: turning page", "attempt", attempt)
		if !skill.Execute(ctx) {
			return false, nil
		}

		// A simulated arm never changes the frame; nothing to verify.
		if o.dryRun {
			return true, nil
		}

		frame, err := o.source.Grab()
		if err != nil {
			return false, fmt.Errorf("frame grab failed: %w", err)
		}
		after := camera.FingerprintFrame(frame)

		if after != before {
			o.logger.Info("orchestrator: page change detected",
				"before", before, "after", after)
			return true, nil
		}

		if attempt <= o.samePageRetry {
			o.logger.Warn("orchestrator: same page detected, retrying turn",
				"attempt", attempt)
		} else {
			o.logger.Warn("orchestrator: page unchanged after retries, moving on",
				"retries", o.samePageRetry)
			return true, nil
		}
	}
	return true, nil
}
