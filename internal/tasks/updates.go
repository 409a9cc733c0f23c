package tasks

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Percent returns completion in the range 0..100.
func (u ProgressUpdate) Percent() float64 {
	if u.Total <= 0 {
		return 0
	}
	p := float64(u.Step) / float64(u.Total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Operation phase enumeration
type Phase int

const (
	FetchLiked Phase = iota
	FetchDone
	ReplayBatch
	ReplayPause
	ReplayDone
	ReplayAborted
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case FetchDone:
		return "fetch_done"
	case ReplayBatch:
		return "replay_batch"
	case ReplayPause:
		return "replay_pause"
	case ReplayDone:
		return "replay_done"
	case ReplayAborted:
		return "replay_aborted"
	default:
		return ""
	}
}

// BatchInfo is attached to [ReplayBatch] updates.
type BatchInfo struct {
	Operation models.Operation
	Start     int // inclusive index into the list
	End       int // exclusive
	Processed int
	Tracks    int
}

func fetchPageUpdate(page, found, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    found,
		Total:   total,
		Message: fmt.Sprintf("Page %d: found %d tracks", page, found),
	}
}

func fetchDoneUpdate(list models.LikedList) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDone,
		Step:    len(list),
		Total:   len(list),
		Message: fmt.Sprintf("Completed finding liked tracks: %d total", len(list)),
		Data:    list,
	}
}

func replayBatchUpdate(step, total int, info BatchInfo, dryRun bool) ProgressUpdate {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}
	u := ProgressUpdate{
		Phase: ReplayBatch,
		Step:  info.Processed,
		Total: info.Tracks,
		Data:  info,
	}
	u.Message = fmt.Sprintf("%s[%d/%d] %s tracks [%d-%d) %.1f%%", prefix, step, total, info.Operation, info.Start, info.End, u.Percent())
	return u
}

func replayPauseUpdate(processed, tracks int, d fmt.Stringer) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayPause,
		Step:    processed,
		Total:   tracks,
		Message: fmt.Sprintf("Waiting %s before next batch", d),
	}
}

func replayDoneUpdate(result *ReplayResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayDone,
		Step:    result.Processed,
		Total:   result.Total,
		Message: fmt.Sprintf("Completed %s of %d tracks in %d batches", result.Operation, result.Processed, result.Batches),
		Data:    result,
	}
}

func replayAbortedUpdate(result *ReplayResult, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayAborted,
		Step:    result.Processed,
		Total:   result.Total,
		Message: fmt.Sprintf("Aborted after %d of %d tracks: %v", result.Processed, result.Total, err),
		Data:    result,
	}
}
