package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// Batch is a consecutive slice of a liked list.
type Batch struct {
	Start  int // inclusive index into the list
	End    int // exclusive
	Tracks []models.Track
}

// IDs returns the batch's track identifiers.
func (b Batch) IDs() []string {
	return models.LikedList(b.Tracks).IDs()
}

// Batches partitions list into ceil(len/size) consecutive batches; only the last may be short.
func Batches(list models.LikedList, size int) ([]Batch, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", shared.ErrInvalidArgument, size)
	}

	batches := make([]Batch, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		batches = append(batches, Batch{Start: start, End: end, Tracks: list[start:end]})
	}
	return batches, nil
}

// ReplayOpts controls [Engine.Replay].
type ReplayOpts struct {
	Op        models.Operation
	BatchSize int
	Delay     time.Duration // pause after each successful batch except the last
	DryRun    bool          // skip write calls; batching, progress and delay still run
}

func (o ReplayOpts) validate() error {
	if !o.Op.Valid() {
		return fmt.Errorf("%w: unknown operation %q", shared.ErrInvalidArgument, o.Op)
	}
	if o.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", shared.ErrInvalidArgument, o.BatchSize)
	}
	if o.BatchSize > shared.MaxBatchSize {
		return fmt.Errorf("%w: batch size %d exceeds maximum of %d", shared.ErrInvalidArgument, o.BatchSize, shared.MaxBatchSize)
	}
	if o.Op == models.OpAdd && o.BatchSize != 1 {
		return fmt.Errorf("%w: add requires a batch size of 1 to keep like order", shared.ErrInvalidArgument)
	}
	if o.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative", shared.ErrInvalidArgument)
	}
	return nil
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	RunID     string           `json:"run_id,omitempty"`
	Operation models.Operation `json:"operation"`
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Batches   int              `json:"batches"`
	Calls     int              `json:"calls"`
	Status    models.RunStatus `json:"status"`
	DryRun    bool             `json:"dry_run"`
}

// AddLiked likes every track on lib one at a time, oldest first, pausing delay between calls.
func (e *Engine) AddLiked(ctx context.Context, lib Library, list models.LikedList, progress chan<- ProgressUpdate, delay time.Duration, dryRun bool) (*ReplayResult, error) {
	return e.Replay(ctx, lib, list, progress, ReplayOpts{Op: models.OpAdd, BatchSize: 1, Delay: delay, DryRun: dryRun})
}

// DeleteLiked removes every track from lib in batches of batchSize (0 selects the maximum of 50).
func (e *Engine) DeleteLiked(ctx context.Context, lib Library, list models.LikedList, progress chan<- ProgressUpdate, batchSize int, dryRun bool) (*ReplayResult, error) {
	if batchSize == 0 {
		batchSize = shared.MaxBatchSize
	}
	return e.Replay(ctx, lib, list, progress, ReplayOpts{Op: models.OpDelete, BatchSize: batchSize, DryRun: dryRun})
}

// Replay applies opts.Op to list in order, one call per batch.
//
// The first failed batch stops the run. The returned result is non-nil whenever the options were valid
// and reports how far the run got. Batches already applied are left in place.
func (e *Engine) Replay(ctx context.Context, lib Library, list models.LikedList, progress chan<- ProgressUpdate, opts ReplayOpts) (*ReplayResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	batches, err := Batches(list, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	result := &ReplayResult{
		Operation: opts.Op,
		Total:     len(list),
		Status:    models.RunPending,
		DryRun:    opts.DryRun,
	}
	result.RunID = e.beginRun(opts, len(list))

	logger := e.logger.With("operation", opts.Op, "run", result.RunID)
	if opts.DryRun {
		logger = logger.With("dry_run", true)
	}
	logger.Info("starting replay", "tracks", len(list), "batches", len(batches), "batch_size", opts.BatchSize, "delay", opts.Delay)

	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			return e.abort(progress, result, fmt.Errorf("%w: %v", shared.ErrAborted, err))
		}

		result.Status = models.RunInProgress
		logger.Debug("sending tracks", "batch", i+1, "start", b.Start, "end", b.End)

		if !opts.DryRun {
			result.Calls++
			if err := lib.Modify(ctx, opts.Op, b.IDs()); err != nil {
				e.logModifyError(b, err)
				return e.abort(progress, result, fmt.Errorf("batch %d/%d [%d-%d): %w", i+1, len(batches), b.Start, b.End, err))
			}
		}

		result.Processed = b.End
		result.Batches++
		e.recordProgress(result)

		info := BatchInfo{Operation: opts.Op, Start: b.Start, End: b.End, Processed: result.Processed, Tracks: result.Total}
		update := replayBatchUpdate(i+1, len(batches), info, opts.DryRun)
		logger.Info(update.Message)
		e.sendProgress(progress, update)

		if opts.Delay > 0 && i < len(batches)-1 {
			e.sendProgress(progress, replayPauseUpdate(result.Processed, result.Total, opts.Delay))
			if err := e.sleep(ctx, opts.Delay); err != nil {
				return e.abort(progress, result, err)
			}
		}
	}

	result.Status = models.RunCompleted
	e.finishRun(result, nil)
	logger.Info("replay complete", "processed", result.Processed, "batches", result.Batches, "calls", result.Calls)
	e.sendProgress(progress, replayDoneUpdate(result))
	return result, nil
}

func (e *Engine) abort(progress chan<- ProgressUpdate, result *ReplayResult, err error) (*ReplayResult, error) {
	result.Status = models.RunAborted
	e.finishRun(result, err)
	e.logger.Error("replay aborted", "operation", result.Operation, "processed", result.Processed, "total", result.Total, "error", err)
	e.sendProgress(progress, replayAbortedUpdate(result, err))
	return result, err
}

func (e *Engine) logModifyError(b Batch, err error) {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		e.logger.Error("failed to set liked tracks", "start", b.Start, "end", b.End, "status", apiErr.StatusCode, "body", apiErr.Body)
		return
	}
	e.logger.Error("failed to set liked tracks", "start", b.Start, "end", b.End, "error", err)
}

func (e *Engine) beginRun(opts ReplayOpts, total int) string {
	if e.recorder == nil {
		return ""
	}
	id, err := e.recorder.Begin(opts.Op, total, opts.BatchSize, opts.Delay, opts.DryRun)
	if err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return ""
	}
	return id
}

func (e *Engine) recordProgress(result *ReplayResult) {
	if e.recorder == nil || result.RunID == "" {
		return
	}
	if err := e.recorder.Progress(result.RunID, result.Processed); err != nil {
		e.logger.Warn("failed to record run progress", "run", result.RunID, "error", err)
	}
}

func (e *Engine) finishRun(result *ReplayResult, cause error) {
	if e.recorder == nil || result.RunID == "" {
		return
	}
	if err := e.recorder.Finish(result.RunID, result.Status, result.Processed, cause); err != nil {
		e.logger.Warn("failed to record run result", "run", result.RunID, "error", err)
	}
}
