package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil)
	if r.RunID == uuid.Nil {
		t.Error("NewRunner() should assign a run ID")
	}
	if r.Logger == nil {
		t.Error("NewRunner() should fall back to the default logger")
	}
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	r := NewRunner(nil)
	err := r.Run(context.Background(), []Stage{stage("process"), stage("plots"), stage("diagrams")})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"process", "plots", "diagrams"}
	if len(order) != len(want) {
		t.Fatalf("ran %d stages, want %d", len(order), len(want))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("stage %d = %q, want %q", i, order[i], name)
		}
	}
}

func TestRunStopsOnStageError(t *testing.T) {
	boom := errors.New("no input files")
	ran := make(map[string]bool)

	stages := []Stage{
		{Name: "process", Run: func(context.Context) error { ran["process"] = true; return nil }},
		{Name: "plots", Run: func(context.Context) error { return boom }},
		{Name: "diagrams", Run: func(context.Context) error { ran["diagrams"] = true; return nil }},
	}

	r := NewRunner(nil)
	err := r.Run(context.Background(), stages)
	if err == nil {
		t.Fatal("Run() should fail when a stage fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped stage error", err)
	}
	if !strings.Contains(err.Error(), "stage plots") {
		t.Errorf("Run() error = %q, should name the failed stage", err)
	}
	if !ran["process"] {
		t.Error("stage before the failure should have run")
	}
	if ran["diagrams"] {
		t.Error("stage after the failure should not have run")
	}
}

func TestRunHooks(t *testing.T) {
	boom := errors.New("boom")
	var started, done []string
	var failed string
	var failErr error

	r := NewRunner(nil)
	r.Hooks = Hooks{
		OnStageStart: func(name string) { started = append(started, name) },
		OnStageDone:  func(name string, _ time.Duration) { done = append(done, name) },
		OnStageError: func(name string, err error) { failed, failErr = name, err },
	}

	stages := []Stage{
		{Name: "process", Run: func(context.Context) error { return nil }},
		{Name: "plots", Run: func(context.Context) error { return boom }},
	}
	if err := r.Run(context.Background(), stages); err == nil {
		t.Fatal("Run() should fail")
	}

	if len(started) != 2 || started[0] != "process" || started[1] != "plots" {
		t.Errorf("OnStageStart calls = %v, want [process plots]", started)
	}
	if len(done) != 1 || done[0] != "process" {
		t.Errorf("OnStageDone calls = %v, want [process]", done)
	}
	if failed != "plots" || !errors.Is(failErr, boom) {
		t.Errorf("OnStageError = (%q, %v), want (plots, boom)", failed, failErr)
	}
}

func TestRunNilHooksSafe(t *testing.T) {
	r := NewRunner(nil)
	stages := []Stage{
		{Name: "ok", Run: func(context.Context) error { return nil }},
		{Name: "bad", Run: func(context.Context) error { return errors.New("bad") }},
	}
	// No hooks installed; both paths must dispatch without panicking.
	if err := r.Run(context.Background(), stages); err == nil {
		t.Fatal("Run() should fail")
	}
}

func TestRunStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(map[string]bool)

	stages := []Stage{
		{Name: "first", Run: func(context.Context) error {
			ran["first"] = true
			cancel()
			return nil
		}},
		{Name: "second", Run: func(context.Context) error { ran["second"] = true; return nil }},
	}

	r := NewRunner(nil)
	err := r.Run(ctx, stages)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if !ran["first"] {
		t.Error("first stage should have run")
	}
	if ran["second"] {
		t.Error("no stage should run after cancellation")
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	r := NewRunner(nil)
	err := r.Run(ctx, []Stage{{Name: "only", Run: func(context.Context) error {
		ran = true
		return nil
	}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if ran {
		t.Error("no stage should run with a canceled context")
	}
}
