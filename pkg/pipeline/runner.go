// Package pipeline orchestrates full figure-generation runs.
//
// A run is an ordered list of stages (process, plot, diagram) executed one
// after another. Stages are plain data so the CLI can assemble a run from
// flags; the runner owns sequencing, timing, and the run ID stamped into
// every figure's metadata.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Stage is one unit of work in a run. Run receives the run context and
// returns the error that should stop the run, or nil.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Hooks receives stage lifecycle events. Nil fields are skipped, so callers
// wire only the events they care about.
type Hooks struct {
	OnStageStart func(name string)
	OnStageDone  func(name string, d time.Duration)
	OnStageError func(name string, err error)
}

// Runner executes stages in order under a single run ID.
//
// The Runner holds no stage results. A stage failure stops the run and the
// returned error names the stage.
type Runner struct {
	RunID  uuid.UUID
	Hooks  Hooks
	Logger *log.Logger
}

// NewRunner creates a runner with a fresh run ID.
// If logger is nil, the default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		RunID:  uuid.New(),
		Logger: logger,
	}
}

// Run executes the stages in order. The first stage error aborts the run;
// a canceled context aborts before the next stage starts.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	start := time.Now()
	r.Logger.Info("run started", "run_id", r.RunID, "stages", len(stages))

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.Hooks.OnStageStart != nil {
			r.Hooks.OnStageStart(st.Name)
		}

		stageStart := time.Now()
		if err := st.Run(ctx); err != nil {
			if r.Hooks.OnStageError != nil {
				r.Hooks.OnStageError(st.Name, err)
			}
			r.Logger.Error("stage failed", "stage", st.Name, "err", err)
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}

		d := time.Since(stageStart)
		if r.Hooks.OnStageDone != nil {
			r.Hooks.OnStageDone(st.Name, d)
		}
		r.Logger.Info("stage complete", "stage", st.Name, "duration", d)
	}

	r.Logger.Info("run complete", "run_id", r.RunID, "duration", time.Since(start))
	return nil
}
