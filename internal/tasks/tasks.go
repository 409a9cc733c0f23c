package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// Library is the subset of the library API used by the pipeline.
//
// Implemented by [services.LibraryClient].
type Library interface {
	SavedTracksURL(limit, offset int) string
	SavedTracks(ctx context.Context, pageURL string) (*services.SavedTracksPage, error)
	Modify(ctx context.Context, op models.Operation, ids []string) error
}

var _ Library = (*services.LibraryClient)(nil)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RunRecorder persists the state of replay runs.
type RunRecorder interface {
	Begin(op models.Operation, total, batchSize int, delay time.Duration, dryRun bool) (string, error)
	Progress(id string, processed int) error
	Finish(id string, status models.RunStatus, processed int, cause error) error
}

// Engine runs fetch and replay operations. It holds no per-run state and may be reused.
type Engine struct {
	logger   *log.Logger
	sleep    Sleeper
	recorder RunRecorder
}

// Option customizes an [Engine].
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSleeper replaces the inter-batch pause.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// WithRecorder attaches run history.
func WithRecorder(r RunRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: shared.NewLogger(io.Discard),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", shared.ErrAborted, ctx.Err())
	case <-timer.C:
		return nil
	}
}
