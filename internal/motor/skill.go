// Package motor executes the arm's trained motor skills (open_book,
// close_book, turn_page). Each skill drives the Solo CLI through a scripted
// interactive dialogue; execution is wrapped in a bounded retry with linear
// backoff. Failure is a first-class return value, not an error: the
// orchestrator branches on it.
package motor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// Skill names. These are the registry keys and the trained policy identities.
const (
	SkillOpenBook  = "open_book"
	SkillCloseBook = "close_book"
	SkillTurnPage  = "turn_page"
)

// Skill is one trained motor capability. Descriptors are built once at
// startup from configuration and are read-only afterwards.
type Skill struct {
	// Name identifies the skill (open_book, close_book, turn_page).
	Name string

	// Policy is the trained policy reference passed to the driver.
	Policy string

	// Duration is how long the physical motion is expected to take. The
	// driver waits at least this long (plus grace) before declaring a
	// hung attempt.
	Duration time.Duration

	// Task is the natural-language task description for the policy.
	Task string

	driver  Driver
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// SkillConfig parameterizes one skill in the registry.
type SkillConfig struct {
	Policy     string
	Duration   time.Duration
	Task       string
	MaxRetries int           // attempts, not re-attempts; default 2
	Backoff    time.Duration // per-attempt backoff unit; default 2s
}

func newSkill(name string, cfg SkillConfig, driver Driver, logger *slog.Logger) *Skill {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Skill{
		Name:     name,
		Policy:   cfg.Policy,
		Duration: cfg.Duration,
		Task:     cfg.Task,
		driver:   driver,
		retries:  cfg.MaxRetries,
		backoff:  cfg.Backoff,
		logger:   logger,
	}
}

// Execute runs the skill with bounded retries and reports success.
// Between attempts the backoff grows linearly (2s, 4s, ...) to give stuck
// hardware time to settle; the retry budget is too short for exponential
// backoff to buy anything.
func (s *Skill) Execute(ctx context.Context) bool {
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			s.logger.Info("motor: executing skill",
				"skill", s.Name, "attempt", attempt, "max", s.retries,
				"policy", s.Policy, "duration", s.Duration)
			if err := s.driver.Run(ctx, s); err != nil {
				s.logger.Warn("motor: attempt failed",
					"skill", s.Name, "attempt", attempt, "error", err)
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.retries)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * s.backoff
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.logger.Error("motor: skill failed",
			"skill", s.Name, "attempts", s.retries, "error", err)
		return false
	}
	s.logger.Info("motor: skill complete", "skill", s.Name, "attempts", attempt)
	return true
}

// Driver performs one end-to-end attempt of a skill.
type Driver interface {
	// Run blocks until the physical action completes or fails. A nil
	// return means the driver-level dialogue succeeded; it does not
	// guarantee the physical action had effect (see the orchestrator's
	// turn verification).
	Run(ctx context.Context, skill *Skill) error

	// Name identifies the driver ("solo", "simulated").
	Name() string
}

// ErrAttemptTimeout wraps a driver attempt that exceeded its deadline.
type ErrAttemptTimeout struct {
	Skill   string
	Elapsed time.Duration
}

func (e *ErrAttemptTimeout) Error() string {
	return fmt.Sprintf("skill %s timed out after %s", e.Skill, e.Elapsed)
}
