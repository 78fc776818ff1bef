// Package runner audits a batch of exported tasks concurrently.
package runner

import (
	"context"
	"fmt"
	"image"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/annotation-audit/internal/annotation"
	"github.com/ironsheep/annotation-audit/internal/audit"
	"github.com/ironsheep/annotation-audit/internal/source"
)

// Reasons a task is left out of the audit.
const (
	SkipInvalidRecord  = "invalid task record"
	SkipNoTaskID       = "no task id"
	SkipNotCompleted   = "not completed"
	SkipNoImage        = "no image"
	SkipNoAnnotations  = "no annotations"
	DefaultWorkerCount = 4
)

// ImageFetcher resolves a task attachment to its decoded image.
type ImageFetcher interface {
	Fetch(ctx context.Context, attachment string) (*image.NRGBA, error)
}

// Outcome is the audit of one task: either a Result or the reason the task
// was skipped.
type Outcome struct {
	TaskID     string
	Result     *audit.Result
	SkipReason string
}

// Skipped reports whether the task was left out.
func (o Outcome) Skipped() bool {
	return o.Result == nil
}

// Runner runs the pipeline over every task of an export.
type Runner struct {
	pipeline *audit.Pipeline
	fetcher  ImageFetcher
	workers  int

	// Logger receives one line per skipped task. Defaults to log.Default().
	Logger *log.Logger

	// Debug also logs a line per audited task.
	Debug bool
}

// New creates a Runner. A workers value below 1 uses DefaultWorkerCount.
func New(pipeline *audit.Pipeline, fetcher ImageFetcher, workers int) *Runner {
	if workers < 1 {
		workers = DefaultWorkerCount
	}
	return &Runner{
		pipeline: pipeline,
		fetcher:  fetcher,
		workers:  workers,
		Logger:   log.Default(),
	}
}

// Run audits tasks with at most the configured number running at once.
// Outcomes are returned in task order. Only cancellation of ctx makes Run
// fail; problems with individual tasks become skip reasons.
func (r *Runner) Run(ctx context.Context, tasks []source.TaskRecord) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range tasks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.runTask(gctx, tasks[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("audit run interrupted: %w", err)
	}
	return outcomes, nil
}

func (r *Runner) runTask(ctx context.Context, t source.TaskRecord) Outcome {
	if t.Invalid != nil {
		return r.skip(t, fmt.Sprintf("%s: %v", SkipInvalidRecord, t.Invalid), nil)
	}
	if t.TaskID == "" {
		return r.skip(t, SkipNoTaskID, nil)
	}
	if t.Status != annotation.StatusCompleted {
		return r.skip(t, SkipNotCompleted, nil)
	}
	if t.Params.Attachment == "" {
		return r.skip(t, SkipNoImage, nil)
	}

	img, err := r.fetcher.Fetch(ctx, t.Params.Attachment)
	if err != nil {
		return r.skip(t, SkipNoImage, err)
	}

	records, ok := t.Records()
	if !ok {
		return r.skip(t, SkipNoAnnotations, nil)
	}

	res := r.pipeline.RunRecords(t.TaskID, img, records)
	if r.Debug {
		r.Logger.Printf("Task %s: %d annotations, %d flagged", t.TaskID, len(records), len(res.Findings))
	}
	return Outcome{TaskID: t.TaskID, Result: res}
}

func (r *Runner) skip(t source.TaskRecord, reason string, err error) Outcome {
	if err != nil {
		r.Logger.Printf("Skipping task %q: %s: %v", t.TaskID, reason, err)
	} else {
		r.Logger.Printf("Skipping task %q: %s", t.TaskID, reason)
	}
	return Outcome{TaskID: t.TaskID, SkipReason: reason}
}
