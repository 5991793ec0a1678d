package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/internal/motor"
	"github.com/ladybugs/bookbot/internal/vision"
)

// fakeSource serves a fixed frame sequence, clamping to the last frame.
type fakeSource struct {
	frames [][]byte
	index  int
	grabs  int
}

func newFakeSource(frames ...string) *fakeSource {
	s := &fakeSource{}
	for _, f := range frames {
		s.frames = append(s.frames, []byte(f))
	}
	if len(s.frames) == 0 {
		s.frames = [][]byte{[]byte("frame")}
	}
	return s
}

func (s *fakeSource) Start() error { return nil }
func (s *fakeSource) Stop()        {}
func (s *fakeSource) IsOpen() bool { return true }

func (s *fakeSource) Grab() ([]byte, error) {
	s.grabs++
	idx := s.index
	if idx > len(s.frames)-1 {
		idx = len(s.frames) - 1
	}
	s.index++
	return s.frames[idx], nil
}

// scriptedDriver counts per-skill runs and fails on request.
// fail[name] = N fails the first N attempts; -1 fails every attempt.
type scriptedDriver struct {
	runs map[string]int
	fail map[string]int
}

func newScriptedDriver() *scriptedDriver {
	return &scriptedDriver{runs: make(map[string]int), fail: make(map[string]int)}
}

func (d *scriptedDriver) Name() string { return "scripted" }

func (d *scriptedDriver) Run(ctx context.Context, skill *motor.Skill) error {
	d.runs[skill.Name]++
	n := d.fail[skill.Name]
	if n == -1 || d.runs[skill.Name] <= n {
		return errors.New("scripted failure")
	}
	return nil
}

type recordingNarrator struct {
	spoken []string
	err    error
}

func (n *recordingNarrator) Speak(ctx context.Context, text string) error {
	n.spoken = append(n.spoken, text)
	return n.err
}

func testRegistry(t *testing.T, driver motor.Driver) *motor.Registry {
	t.Helper()
	reg, err := motor.NewRegistry(motor.RegistryConfig{
		Skills: map[string]motor.SkillConfig{
			motor.SkillOpenBook:  {Policy: "p/open", Duration: time.Second, Task: "open", MaxRetries: 1, Backoff: time.Millisecond},
			motor.SkillCloseBook: {Policy: "p/close", Duration: time.Second, Task: "close", MaxRetries: 1, Backoff: time.Millisecond},
			motor.SkillTurnPage:  {Policy: "p/turn", Duration: time.Second, Task: "turn", MaxRetries: 1, Backoff: time.Millisecond},
		},
	}, driver)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func newTestOrchestrator(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestNoBookExitsImmediately(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{vision.SceneNoBook}

	o := newTestOrchestrator(t, Config{
		Source: newFakeSource(),
		Vision: mock,
		Motor:  testRegistry(t, driver),
		DryRun: true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if mock.AssessCalls != 1 {
		t.Errorf("assess calls = %d, want 1", mock.AssessCalls)
	}
	if mock.ClassifyCalls != 0 {
		t.Errorf("classify calls = %d, want 0", mock.ClassifyCalls)
	}
	if len(driver.runs) != 0 {
		t.Errorf("motor skills ran: %v, want none", driver.runs)
	}
	if o.SpreadCount() != 0 {
		t.Errorf("spread count = %d, want 0", o.SpreadCount())
	}
}

func TestClosedOpenDoneSequence(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{vision.SceneBookClosed, vision.SceneBookOpen, vision.SceneBookDone}

	narrator := &recordingNarrator{}
	o := newTestOrchestrator(t, Config{
		Source:   newFakeSource(),
		Vision:   mock,
		Motor:    testRegistry(t, driver),
		Narrator: narrator,
		DryRun:   true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if mock.AssessCalls != 3 {
		t.Errorf("assess calls = %d, want 3", mock.AssessCalls)
	}
	if mock.ClassifyCalls != 1 {
		t.Errorf("classify calls = %d, want 1", mock.ClassifyCalls)
	}
	if driver.runs[motor.SkillOpenBook] != 1 {
		t.Errorf("open_book ran %d times, want 1", driver.runs[motor.SkillOpenBook])
	}
	if driver.runs[motor.SkillCloseBook] != 1 {
		t.Errorf("close_book ran %d times, want 1", driver.runs[motor.SkillCloseBook])
	}
	if o.SpreadCount() != 1 {
		t.Errorf("spread count = %d, want 1", o.SpreadCount())
	}

	// One spread: left then right, in that order.
	if len(mock.ReadCalls) != 2 {
		t.Fatalf("read calls = %d, want 2", len(mock.ReadCalls))
	}
	if mock.ReadCalls[0].Half != vision.HalfLeft || mock.ReadCalls[1].Half != vision.HalfRight {
		t.Errorf("read order = %v, want left then right", mock.ReadCalls)
	}
	if len(narrator.spoken) != 2 {
		t.Errorf("narrated %d pages, want 2", len(narrator.spoken))
	}
}

func TestSkipTypesSuppressReadingButStillTurn(t *testing.T) {
	for _, pt := range []vision.PageType{vision.PageBlank, vision.PageIndex} {
		t.Run(string(pt), func(t *testing.T) {
			driver := newScriptedDriver()
			mock := vision.NewMockClient()
			mock.Scenes = []vision.SceneState{vision.SceneBookOpen, vision.SceneBookDone}
			mock.Pages = []vision.PageType{pt}

			o := newTestOrchestrator(t, Config{
				Source: newFakeSource(),
				Vision: mock,
				Motor:  testRegistry(t, driver),
				DryRun: true,
			})
			if err := o.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if mock.ClassifyCalls != 1 {
				t.Errorf("classify calls = %d, want 1", mock.ClassifyCalls)
			}
			if len(mock.ReadCalls) != 0 {
				t.Errorf("read calls = %d, want 0 for %s page", len(mock.ReadCalls), pt)
			}
			if driver.runs[motor.SkillTurnPage] != 1 {
				t.Errorf("turn_page ran %d times, want 1", driver.runs[motor.SkillTurnPage])
			}
			if o.SpreadCount() != 1 {
				t.Errorf("spread count = %d, want 1 (skipped spreads still count)", o.SpreadCount())
			}
		})
	}
}

func TestMixedPageTypes(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{
		vision.SceneBookOpen, vision.SceneBookOpen, vision.SceneBookOpen, vision.SceneBookDone,
	}
	mock.Pages = []vision.PageType{vision.PageContent, vision.PageBlank, vision.PageContent}

	o := newTestOrchestrator(t, Config{
		Source: newFakeSource(),
		Vision: mock,
		Motor:  testRegistry(t, driver),
		DryRun: true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if o.SpreadCount() != 3 {
		t.Errorf("spread count = %d, want 3", o.SpreadCount())
	}
	// 2 of 3 spreads read, two halves each.
	if len(mock.ReadCalls) != 4 {
		t.Errorf("read calls = %d, want 4", len(mock.ReadCalls))
	}
	if driver.runs[motor.SkillTurnPage] != 3 {
		t.Errorf("turn_page ran %d times, want 3", driver.runs[motor.SkillTurnPage])
	}
}

func TestOpenBookFailureAbortsSession(t *testing.T) {
	driver := newScriptedDriver()
	driver.fail[motor.SkillOpenBook] = -1
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{vision.SceneBookClosed}

	o := newTestOrchestrator(t, Config{
		Source: newFakeSource(),
		Vision: mock,
		Motor:  testRegistry(t, driver),
		DryRun: true,
	})
	err := o.Run(context.Background())
	if !errors.Is(err, ErrOpenBookFailed) {
		t.Fatalf("err = %v, want ErrOpenBookFailed", err)
	}
	if mock.ClassifyCalls != 0 {
		t.Error("no classification should happen after a failed open")
	}
}

func TestCloseBookFailureStillEndsNormally(t *testing.T) {
	driver := newScriptedDriver()
	driver.fail[motor.SkillCloseBook] = -1
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{vision.SceneBookDone}

	o := newTestOrchestrator(t, Config{
		Source: newFakeSource(),
		Vision: mock,
		Motor:  testRegistry(t, driver),
		DryRun: true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v, want normal end despite close failure", err)
	}
	if driver.runs[motor.SkillCloseBook] != 1 {
		t.Errorf("close_book ran %d times, want 1", driver.runs[motor.SkillCloseBook])
	}
}

func TestIterationBudget(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient() // always book_open: never terminal

	o := newTestOrchestrator(t, Config{
		Source:        newFakeSource(),
		Vision:        mock,
		Motor:         testRegistry(t, driver),
		DryRun:        true,
		MaxIterations: 5,
	})
	err := o.Run(context.Background())
	if !errors.Is(err, ErrIterationBudget) {
		t.Fatalf("err = %v, want ErrIterationBudget", err)
	}
	if o.SpreadCount() != 5 {
		t.Errorf("spread count = %d, want 5", o.SpreadCount())
	}
}

func TestTurnVerificationSkillFailure(t *testing.T) {
	driver := newScriptedDriver()
	driver.fail[motor.SkillTurnPage] = -1

	source := newFakeSource("a", "b", "c")
	o := newTestOrchestrator(t, Config{
		Source: source,
		Vision: vision.NewMockClient(),
		Motor:  testRegistry(t, driver),
	})

	turned, err := o.turnWithVerification(context.Background())
	if err != nil {
		t.Fatalf("turnWithVerification: %v", err)
	}
	if turned {
		t.Error("turned = true, want false on skill failure")
	}
	// One "before" grab only: no fingerprint comparison happened.
	if source.grabs != 1 {
		t.Errorf("grabs = %d, want 1 (no after-frame on skill failure)", source.grabs)
	}
}

func TestTurnVerificationDetectsChange(t *testing.T) {
	driver := newScriptedDriver()
	source := newFakeSource("page-one", "page-two")

	o := newTestOrchestrator(t, Config{
		Source: source,
		Vision: vision.NewMockClient(),
		Motor:  testRegistry(t, driver),
	})

	turned, err := o.turnWithVerification(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !turned {
		t.Error("expected success")
	}
	if driver.runs[motor.SkillTurnPage] != 1 {
		t.Errorf("turn_page ran %d times, want 1", driver.runs[motor.SkillTurnPage])
	}
}

func TestTurnVerificationGivesUpButProceeds(t *testing.T) {
	driver := newScriptedDriver()
	// Every grab returns the identical frame: the page never appears to turn.
	source := newFakeSource("stuck-page")

	o := newTestOrchestrator(t, Config{
		Source:             source,
		Vision:             vision.NewMockClient(),
		Motor:              testRegistry(t, driver),
		MaxSamePageRetries: 2,
	})

	turned, err := o.turnWithVerification(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Counter-intuitive but deliberate: after exhausting retries on an
	// unchanged page the routine reports success so the session moves on.
	if !turned {
		t.Error("give-up path must still report success")
	}
	if got := driver.runs[motor.SkillTurnPage]; got != 3 {
		t.Errorf("turn_page ran %d times, want 3 (1 + 2 retries)", got)
	}
}

func TestDryRunSkipsVerification(t *testing.T) {
	driver := newScriptedDriver()
	source := newFakeSource("same", "same", "same")

	o := newTestOrchestrator(t, Config{
		Source: source,
		Vision: vision.NewMockClient(),
		Motor:  testRegistry(t, driver),
		DryRun: true,
	})

	turned, err := o.turnWithVerification(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !turned {
		t.Error("expected success")
	}
	if driver.runs[motor.SkillTurnPage] != 1 {
		t.Errorf("turn_page ran %d times, want 1", driver.runs[motor.SkillTurnPage])
	}
	if source.grabs != 0 {
		t.Errorf("grabs = %d, want 0 in dry-run verification", source.grabs)
	}
}

func TestEndToEndReplaySession(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{
		vision.SceneBookClosed, vision.SceneBookOpen, vision.SceneBookOpen, vision.SceneBookDone,
	}
	narrator := &recordingNarrator{}

	o := newTestOrchestrator(t, Config{
		Source:   newFakeSource("closed", "open1", "open2", "done"),
		Vision:   mock,
		Motor:    testRegistry(t, driver),
		Narrator: narrator,
		DryRun:   true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if driver.runs[motor.SkillOpenBook] != 1 {
		t.Errorf("open_book = %d, want 1", driver.runs[motor.SkillOpenBook])
	}
	if driver.runs[motor.SkillTurnPage] != 2 {
		t.Errorf("turn_page = %d, want 2", driver.runs[motor.SkillTurnPage])
	}
	if driver.runs[motor.SkillCloseBook] != 1 {
		t.Errorf("close_book = %d, want 1", driver.runs[motor.SkillCloseBook])
	}
	if mock.ClassifyCalls != 2 {
		t.Errorf("classify = %d, want 2", mock.ClassifyCalls)
	}
	if len(mock.ReadCalls) != 4 {
		t.Errorf("reads = %d, want 4", len(mock.ReadCalls))
	}
	if o.SpreadCount() != 2 {
		t.Errorf("spread count = %d, want 2", o.SpreadCount())
	}
	if len(narrator.spoken) != 4 {
		t.Errorf("narrated %d halves, want 4", len(narrator.spoken))
	}
}

func TestNarrationFailureDegradesGracefully(t *testing.T) {
	driver := newScriptedDriver()
	mock := vision.NewMockClient()
	mock.Scenes = []vision.SceneState{vision.SceneBookOpen, vision.SceneBookDone}

	o := newTestOrchestrator(t, Config{
		Source:   newFakeSource(),
		Vision:   mock,
		Motor:    testRegistry(t, driver),
		Narrator: &recordingNarrator{err: errors.New("speaker unplugged")},
		DryRun:   true,
	})
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v, narration failure must not abort the session", err)
	}
	if len(mock.ReadCalls) != 2 {
		t.Errorf("reads = %d, want 2", len(mock.ReadCalls))
	}
}

func TestNewValidatesRequiredDeps(t *testing.T) {
	driver := newScriptedDriver()
	valid := Config{
		Source: newFakeSource(),
		Vision: vision.NewMockClient(),
		Motor:  testRegistry(t, driver),
	}

	for name, mutate := range map[string]func(*Config){
		"source": func(c *Config) { c.Source = nil },
		"vision": func(c *Config) { c.Vision = nil },
		"motor":  func(c *Config) { c.Motor = nil },
	} {
		cfg := valid
		mutate(&cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("New without %s should fail", name)
		}
	}
}
