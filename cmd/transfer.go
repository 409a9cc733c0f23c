package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// replayPlan is a confirmed replay ready to run.
type replayPlan struct {
	op        models.Operation
	list      models.LikedList
	batchSize int
	delay     time.Duration
}

// TransferAdd likes the source account's tracks on the destination account, oldest first.
func (r *Runner) TransferAdd(ctx context.Context, cmd *cli.Command) error {
	list, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	delay, err := r.resolveDelay(cmd)
	if err != nil {
		return err
	}

	return r.replay(ctx, cmd, replayPlan{op: models.OpAdd, list: list, batchSize: 1, delay: delay})
}

// TransferDelete removes the source account's tracks from the destination account.
func (r *Runner) TransferDelete(ctx context.Context, cmd *cli.Command) error {
	batchSize := r.config.Transfer.DeleteBatchSize
	if cmd.IsSet("batch-size") {
		batchSize = int(cmd.Int("batch-size"))
	}
	if batchSize < 1 || batchSize > shared.MaxBatchSize {
		return fmt.Errorf("%w: --batch-size must be between 1 and %d", shared.ErrInvalidArgument, shared.MaxBatchSize)
	}

	list, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	return r.replay(ctx, cmd, replayPlan{op: models.OpDelete, list: list, batchSize: batchSize})
}

// TransferRun asks for the operation, then runs it with configured settings.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	list, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	op, ok, err := r.prompt.Operation()
	if err != nil {
		return err
	}
	if !ok {
		r.writePlain("Exiting program\n")
		return nil
	}

	plan := replayPlan{op: op, list: list, batchSize: r.config.Transfer.DeleteBatchSize}
	if op == models.OpAdd {
		plan.batchSize = 1
		if plan.delay, err = r.resolveDelay(cmd); err != nil {
			return err
		}
	}

	return r.replay(ctx, cmd, plan)
}

// resolveDelay takes --delay, then the config value when prompts are skipped, then asks.
func (r *Runner) resolveDelay(cmd *cli.Command) (time.Duration, error) {
	if cmd.IsSet("delay") {
		d, ok := shared.DurationFromSeconds(cmd.Float("delay"))
		if !ok {
			return 0, fmt.Errorf("%w: --delay must be a non-negative number of seconds", shared.ErrInvalidArgument)
		}
		return d, nil
	}

	def := r.config.Transfer.DelayDuration()
	if cmd.Bool("yes") {
		return def, nil
	}

	delay, ok, err := r.prompt.Delay(def)
	if err != nil {
		return 0, err
	}
	if !ok {
		r.logger.Warn("unable to parse delay, using default", "default", def)
		r.writePlain("Unable to convert your input to a number. Using default value of %s\n", def)
	}
	return delay, nil
}

// replay confirms the plan and applies it to the destination account, printing per-batch progress.
func (r *Runner) replay(ctx context.Context, cmd *cli.Command, plan replayPlan) error {
	if len(plan.list) == 0 {
		r.writePlain("No liked tracks to %s\n", plan.op)
		return nil
	}

	dst, err := r.destinationLibrary()
	if err != nil {
		return err
	}

	dryRun := r.config.Transfer.Testing
	if !cmd.Bool("yes") {
		question := fmt.Sprintf("%s %d tracks on the destination account?", opVerb(plan.op), len(plan.list))
		if dryRun {
			question = "[dry run] " + question
		}
		ok, err := r.prompt.Confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			r.writePlain("Exiting program\n")
			return nil
		}
	}

	engine, closeDB := r.newEngine(true)
	defer closeDB()

	r.logger.Info("starting replay", "operation", plan.op, "tracks", len(plan.list), "batch_size", plan.batchSize, "delay", plan.delay, "dry_run", dryRun)

	// one slot per batch plus pauses and the final update, so no batch line is dropped
	batches := (len(plan.list) + plan.batchSize - 1) / plan.batchSize
	progressCh := make(chan tasks.ProgressUpdate, 2*batches+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.ReplayBatch {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	var result *tasks.ReplayResult
	switch plan.op {
	case models.OpAdd:
		result, err = engine.AddLiked(ctx, dst, plan.list, progressCh, plan.delay, dryRun)
	default:
		result, err = engine.DeleteLiked(ctx, dst, plan.list, progressCh, plan.batchSize, dryRun)
	}
	close(progressCh)
	<-done

	if result != nil {
		r.writeSummary(result)
	}
	if err != nil {
		return err
	}

	if plan.op == models.OpAdd {
		r.writePlain("If the song order looks incorrect, re-run this with a longer --delay between adds\n")
	}
	return nil
}

func (r *Runner) writeSummary(result *tasks.ReplayResult) {
	r.writePlain("\n")
	switch result.Status {
	case models.RunCompleted:
		r.writePlainHeader(fmt.Sprintf("Completed %s of liked tracks", opNoun(result.Operation)))
	default:
		r.writePlainHeader(fmt.Sprintf("Stopped %s of liked tracks", opNoun(result.Operation)))
	}
	r.writePlain("Processed: %d/%d tracks\n", result.Processed, result.Total)
	r.writePlain("Batches: %d\n", result.Batches)
	r.writePlain("API calls: %d\n", result.Calls)
	if result.DryRun {
		r.writePlain("Dry run: no changes were made\n")
	}
	if result.RunID != "" {
		r.writePlain("Run: %s\n", result.RunID)
	}
	if result.Status == models.RunAborted {
		r.writePlain("Tracks before the failure were applied; re-running is safe.\n")
	}
}

func opVerb(op models.Operation) string {
	if op == models.OpDelete {
		return "Delete"
	}
	return "Add"
}

func opNoun(op models.Operation) string {
	if op == models.OpDelete {
		return "deleting"
	}
	return "adding"
}
