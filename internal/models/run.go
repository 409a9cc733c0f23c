package models

import (
	"errors"
	"fmt"
	"time"
)

// RunStatus tracks a replay through PENDING → IN_PROGRESS → COMPLETED | ABORTED.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunAborted    RunStatus = "aborted"
)

// Terminal reports whether no further transitions are allowed.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunAborted
}

// CanTransition reports whether moving from s to next is allowed.
func (s RunStatus) CanTransition(next RunStatus) bool {
	switch s {
	case RunPending:
		return next == RunInProgress || next == RunAborted
	case RunInProgress:
		return next == RunInProgress || next.Terminal()
	default:
		return false
	}
}

// TransferRun records a single replay against the destination library.
type TransferRun struct {
	id              string
	sequence        int
	operation       Operation
	status          RunStatus
	tracksTotal     int
	tracksProcessed int
	batchSize       int
	delay           time.Duration
	dryRun          bool
	errorMessage    string
	startedAt       *time.Time
	completedAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

var _ Model = (*TransferRun)(nil)

// NewTransferRun creates a pending run.
func NewTransferRun(sequence int, op Operation, total, batchSize int, delay time.Duration, dryRun bool) *TransferRun {
	now := time.Now()
	return &TransferRun{
		sequence:    sequence,
		operation:   op,
		status:      RunPending,
		tracksTotal: total,
		batchSize:   batchSize,
		delay:       delay,
		dryRun:      dryRun,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *TransferRun) ID() string              { return r.id }
func (r *TransferRun) Sequence() int           { return r.sequence }
func (r *TransferRun) Operation() Operation    { return r.operation }
func (r *TransferRun) Status() RunStatus       { return r.status }
func (r *TransferRun) TracksTotal() int        { return r.tracksTotal }
func (r *TransferRun) TracksProcessed() int    { return r.tracksProcessed }
func (r *TransferRun) BatchSize() int          { return r.batchSize }
func (r *TransferRun) Delay() time.Duration    { return r.delay }
func (r *TransferRun) DryRun() bool            { return r.dryRun }
func (r *TransferRun) ErrorMessage() string    { return r.errorMessage }
func (r *TransferRun) StartedAt() *time.Time   { return r.startedAt }
func (r *TransferRun) CompletedAt() *time.Time { return r.completedAt }
func (r *TransferRun) CreatedAt() time.Time    { return r.createdAt }
func (r *TransferRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *TransferRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *TransferRun) SetID(id string)                { r.id = id }
func (r *TransferRun) SetSequence(seq int)            { r.sequence = seq }
func (r *TransferRun) SetCreatedAt(t time.Time)       { r.createdAt = t }
func (r *TransferRun) SetUpdatedAt(t time.Time)       { r.updatedAt = t }
func (r *TransferRun) SetDeletedAt(t *time.Time)      { r.deletedAt = t }
func (r *TransferRun) SetStartedAt(t *time.Time)      { r.startedAt = t }
func (r *TransferRun) SetCompletedAt(t *time.Time)    { r.completedAt = t }
func (r *TransferRun) SetErrorMessage(msg string)     { r.errorMessage = msg }
func (r *TransferRun) SetTracksProcessed(n int)       { r.tracksProcessed = n }
func (r *TransferRun) SetStatusUnchecked(s RunStatus) { r.status = s }

// Start moves a pending run to in-progress.
func (r *TransferRun) Start(at time.Time) error {
	if err := r.transition(RunInProgress); err != nil {
		return err
	}
	r.startedAt = &at
	r.updatedAt = at
	return nil
}

// Advance records progress on an in-progress run.
func (r *TransferRun) Advance(processed int, at time.Time) error {
	if err := r.transition(RunInProgress); err != nil {
		return err
	}
	r.tracksProcessed = processed
	r.updatedAt = at
	return nil
}

// Complete marks the run as finished successfully.
func (r *TransferRun) Complete(at time.Time) error {
	if err := r.transition(RunCompleted); err != nil {
		return err
	}
	r.completedAt = &at
	r.updatedAt = at
	return nil
}

// Abort marks the run as stopped by an error. Already-applied batches are kept.
func (r *TransferRun) Abort(cause error, at time.Time) error {
	if err := r.transition(RunAborted); err != nil {
		return err
	}
	if cause != nil {
		r.errorMessage = cause.Error()
	}
	r.completedAt = &at
	r.updatedAt = at
	return nil
}

func (r *TransferRun) transition(next RunStatus) error {
	if !r.status.CanTransition(next) {
		return fmt.Errorf("invalid run transition %s -> %s", r.status, next)
	}
	r.status = next
	return nil
}

// Validate checks the run fields.
func (r *TransferRun) Validate() error {
	if !r.operation.Valid() {
		return fmt.Errorf("invalid operation %q", r.operation)
	}
	switch r.status {
	case RunPending, RunInProgress, RunCompleted, RunAborted:
	default:
		return fmt.Errorf("invalid status %q", r.status)
	}
	if r.tracksTotal < 0 {
		return errors.New("tracks total must not be negative")
	}
	if r.tracksProcessed < 0 || r.tracksProcessed > r.tracksTotal {
		return fmt.Errorf("tracks processed %d out of range 0..%d", r.tracksProcessed, r.tracksTotal)
	}
	if r.batchSize < 1 {
		return errors.New("batch size must be at least 1")
	}
	if r.operation == OpAdd && r.batchSize != 1 {
		return errors.New("add runs must use a batch size of 1")
	}
	if r.delay < 0 {
		return errors.New("delay must not be negative")
	}
	return nil
}
