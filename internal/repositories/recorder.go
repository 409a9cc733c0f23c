package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
)

// RunRecorder persists a replay's state machine through a [RunRepository].
//
// It satisfies tasks.RunRecorder. Each method loads the run, applies the transition and writes it back.
type RunRecorder struct {
	repo *RunRepository
	now  func() time.Time
}

// NewRunRecorder creates a RunRecorder backed by repo.
func NewRunRecorder(repo *RunRepository) *RunRecorder {
	return &RunRecorder{repo: repo, now: time.Now}
}

// Begin stores a pending run and returns its ID.
func (r *RunRecorder) Begin(op models.Operation, total, batchSize int, delay time.Duration, dryRun bool) (string, error) {
	run := models.NewTransferRun(0, op, total, batchSize, delay, dryRun)
	if err := r.repo.Create(run); err != nil {
		return "", err
	}
	return run.ID(), nil
}

// Progress moves the run to in-progress and stores the processed count.
func (r *RunRecorder) Progress(id string, processed int) error {
	run, err := r.repo.Get(id)
	if err != nil {
		return err
	}

	now := r.now()
	if run.Status() == models.RunPending {
		if err := run.Start(now); err != nil {
			return err
		}
	}
	if err := run.Advance(processed, now); err != nil {
		return err
	}
	return r.repo.Update(run)
}

// Finish stores the terminal status. A completed run that never advanced is started first.
func (r *RunRecorder) Finish(id string, status models.RunStatus, processed int, cause error) error {
	run, err := r.repo.Get(id)
	if err != nil {
		return err
	}

	now := r.now()
	run.SetTracksProcessed(processed)

	switch status {
	case models.RunCompleted:
		if run.Status() == models.RunPending {
			if err := run.Start(now); err != nil {
				return err
			}
		}
		err = run.Complete(now)
	case models.RunAborted:
		err = run.Abort(cause, now)
	default:
		err = fmt.Errorf("status %q is not terminal", status)
	}
	if err != nil {
		return err
	}

	return r.repo.Update(run)
}
