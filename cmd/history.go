package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a recorded run.
type runView struct {
	ID              string     `json:"id"`
	Sequence        int        `json:"sequence"`
	Operation       string     `json:"operation"`
	Status          string     `json:"status"`
	TracksTotal     int        `json:"tracks_total"`
	TracksProcessed int        `json:"tracks_processed"`
	BatchSize       int        `json:"batch_size"`
	DelaySeconds    float64    `json:"delay_seconds"`
	DryRun          bool       `json:"dry_run"`
	Error           string     `json:"error,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newRunView(run *models.TransferRun) runView {
	return runView{
		ID:              run.ID(),
		Sequence:        run.Sequence(),
		Operation:       string(run.Operation()),
		Status:          string(run.Status()),
		TracksTotal:     run.TracksTotal(),
		TracksProcessed: run.TracksProcessed(),
		BatchSize:       run.BatchSize(),
		DelaySeconds:    run.Delay().Seconds(),
		DryRun:          run.DryRun(),
		Error:           run.ErrorMessage(),
		StartedAt:       run.StartedAt(),
		CompletedAt:     run.CompletedAt(),
		CreatedAt:       run.CreatedAt(),
	}
}

// History lists recorded replay runs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if status := cmd.String("status"); status != "" {
		s := models.RunStatus(status)
		switch s {
		case models.RunPending, models.RunInProgress, models.RunCompleted, models.RunAborted:
		default:
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
		}
		criteria["status"] = s
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}

	r.writePlainHeader("Replay History")
	for _, run := range runs {
		dry := ""
		if run.DryRun() {
			dry = " (dry run)"
		}
		r.writePlain("#%-4d %-6s %-11s %d/%d tracks  %s%s\n",
			run.Sequence(), run.Operation(), run.Status(), run.TracksProcessed(), run.TracksTotal(),
			run.CreatedAt().Local().Format("2006-01-02 15:04:05"), dry)
		if msg := run.ErrorMessage(); msg != "" {
			r.writePlain("      error: %s\n", msg)
		}
	}
	return nil
}
