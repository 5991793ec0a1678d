package motor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
)

// SoloParams are the hardware-setup answers fed to the Solo CLI dialogue.
// They are shared by every skill; the policy, duration and task come from
// the skill descriptor.
type SoloParams struct {
	FollowerID      int
	Camera0Angle    string
	Camera1Angle    string
	SelectedCameras string
}

// dialogueStep is one expected prompt and the literal response to send.
// The whole CLI interaction is a table of these, kept as data so it can be
// inspected and tested without spawning a process.
type dialogueStep struct {
	expect string
	send   string
}

// soloDialogue builds the scripted prompt/response sequence for one skill.
func soloDialogue(skill *Skill, params SoloParams) []dialogueStep {
	return []dialogueStep{
		{"Would you like to use these preconfigured Inference settings", "n"},
		{"Would you like to teleoperate during inference", "n"},
		{"Enter follower id", strconv.Itoa(params.FollowerID)},
		{"Enter policy path", skill.Policy},
		{"Duration of inference session in seconds", strconv.Itoa(int(skill.Duration.Seconds()))},
		{"Enter task description", skill.Task},
		{"Enter viewing angle for Camera #0", params.Camera0Angle},
		{"Enter viewing angle for Camera #1", params.Camera1Angle},
		{"Select cameras", params.SelectedCameras},
	}
}

// SoloDriverConfig configures the live Solo CLI driver.
type SoloDriverConfig struct {
	Command       string // default "solo"
	Args          []string
	Params        SoloParams
	PromptTimeout time.Duration // max wait for each expected prompt
	Grace         time.Duration // slack past skill duration before declaring a hang
	Logger        *slog.Logger
}

// SoloDriver runs a skill by spawning the interactive Solo CLI on a pty
// and answering its prompts from the dialogue table. Exactly one spawned
// process exists per attempt; it is torn down on every exit path.
type SoloDriver struct {
	command       string
	args          []string
	params        SoloParams
	promptTimeout time.Duration
	grace         time.Duration
	logger        *slog.Logger
}

// NewSoloDriver creates a live driver.
func NewSoloDriver(cfg SoloDriverConfig) *SoloDriver {
	if cfg.Command == "" {
		cfg.Command = "solo"
	}
	if len(cfg.Args) == 0 {
		cfg.Args = []string{"robo", "--inference"}
	}
	if cfg.PromptTimeout == 0 {
		cfg.PromptTimeout = 30 * time.Second
	}
	if cfg.Grace == 0 {
		cfg.Grace = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SoloDriver{
		command:       cfg.Command,
		args:          cfg.Args,
		params:        cfg.Params,
		promptTimeout: cfg.PromptTimeout,
		grace:         cfg.Grace,
		logger:        cfg.Logger,
	}
}

// Name identifies the driver.
func (d *SoloDriver) Name() string { return "solo" }

// Run spawns the CLI, walks the dialogue, then waits for the process to
// finish within the skill's duration plus grace.
func (d *SoloDriver) Run(ctx context.Context, skill *Skill) error {
	cmd := exec.Command(d.command, d.args...)
	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to spawn %s: %w", d.command, err)
	}
	// Force-close the process handle before any retry or return.
	defer func() {
		f.Close()
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}()

	for _, step := range soloDialogue(skill, d.params) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.expect(f, step.expect); err != nil {
			return fmt.Errorf("waiting for prompt %q: %w", step.expect, err)
		}
		if _, err := f.WriteString(step.send + "\n"); err != nil {
			return fmt.Errorf("sending response for %q: %w", step.expect, err)
		}
		d.logger.Debug("motor: answered prompt", "skill", skill.Name, "prompt", step.expect)
	}

	// Dialogue complete: the skill is running. Wait for the process to
	// exit, allowing the full physical duration plus grace.
	deadline := skill.Duration + d.grace
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	start := time.Now()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s exited with error: %w", d.command, err)
		}
		return nil
	case <-time.After(deadline):
		return &ErrAttemptTimeout{Skill: skill.Name, Elapsed: time.Since(start)}
	}
}

// expect reads pty output until the pattern appears or the prompt timeout
// elapses. An EOF before the pattern means the process died mid-dialogue.
func (d *SoloDriver) expect(f *os.File, pattern string) error {
	deadline := time.Now().Add(d.promptTimeout)
	var window strings.Builder
	buf := make([]byte, 4096)

	for {
		if err := f.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("cannot set read deadline: %w", err)
		}
		n, err := f.Read(buf)
		if n > 0 {
			window.Write(buf[:n])
			if strings.Contains(window.String(), pattern) {
				return nil
			}
		}
		if err != nil {
			if os.IsTimeout(err) {
				return fmt.Errorf("timed out after %s", d.promptTimeout)
			}
			return fmt.Errorf("process ended before prompt: %w", err)
		}
	}
}

// SimDriver is the fallback for dry-run mode or hosts without the Solo
// CLI. Every attempt logs the parameters it would have used and succeeds,
// so the state machine can be exercised end to end without hardware.
type SimDriver struct {
	Label  string // "dry-run" or "simulated"
	Logger *slog.Logger

	// Runs counts attempts, for tests.
	Runs int
}

// NewSimDriver creates a simulated driver.
func NewSimDriver(label string, logger *slog.Logger) *SimDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimDriver{Label: label, Logger: logger}
}

// Name identifies the driver.
func (d *SimDriver) Name() string { return "simulated" }

// Run logs the intended invocation and reports success.
func (d *SimDriver) Run(ctx context.Context, skill *Skill) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Runs++
	d.Logger.Info("motor: simulated solo robo --inference",
		"label", d.Label,
		"skill", skill.Name,
		"policy", skill.Policy,
		"duration", skill.Duration,
		"task", skill.Task)
	return nil
}
