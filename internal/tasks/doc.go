// Package tasks implements the liked-tracks migration pipeline: a paginated fetch followed by an ordered replay.
//
// # Fetch
//
// [Engine.FetchLiked] walks the cursor-paginated listing endpoint, following each page's next URL until it is absent.
// The API returns likes newest-first; the accumulated list is reversed so index 0 is the oldest like.
// A non-200 page discards everything collected so far and returns an empty list with the error.
//
// # Replay
//
// [Engine.Replay] partitions a list into consecutive batches and issues one PUT (add) or DELETE (delete) per batch, strictly in order.
//
// Adds must use a batch size of 1. The API acknowledges a PUT before the like becomes visible,
// so several ids in one call (or calls sent back to back) can land in a different order.
// A pause after every successful call bounds that race. The ordering is best effort:
// nothing confirms visibility, and a longer delay only lowers the odds of misordering.
//
// The first failed batch aborts the run. Earlier batches are not rolled back; adds and deletes are safe to re-run.
// There is no retry.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends never block:
// a full channel drops the update rather than slowing the transfer.
//
// # Run History
//
// An optional [RunRecorder] receives the run's state transitions (pending, in progress, completed or aborted).
// Recorder failures are logged and otherwise ignored.
package tasks
