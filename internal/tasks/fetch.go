package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"golang.org/x/time/rate"
)

// FetchOpts controls [Engine.FetchLiked].
type FetchOpts struct {
	PageSize  int     // items per page, clamped to 1..50 by the client
	RateLimit float64 // page requests per second, 0 for unlimited
}

// FetchLiked collects the complete liked list from lib, oldest-first.
//
// Pages are requested strictly one after another by following each page's next URL.
// Any failed page discards what was collected and returns an empty list with the error.
func (e *Engine) FetchLiked(ctx context.Context, lib Library, progress chan<- ProgressUpdate, opts FetchOpts) (models.LikedList, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = shared.MaxBatchSize
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	var (
		collected []models.Track
		skipped   int
		page      int
		seen      = map[string]bool{}
	)

	for next := lib.SavedTracksURL(pageSize, 0); next != ""; {
		if seen[next] {
			return models.LikedList{}, fmt.Errorf("%w: pagination repeated page %s", shared.ErrAPIRequest, next)
		}
		seen[next] = true

		if err := limiter.Wait(ctx); err != nil {
			return models.LikedList{}, fmt.Errorf("%w: %v", shared.ErrAborted, err)
		}

		page++
		resp, err := lib.SavedTracks(ctx, next)
		if err != nil {
			e.logFetchError(next, err)
			return models.LikedList{}, fmt.Errorf("failed to fetch liked tracks page %d: %w", page, err)
		}

		collected = append(collected, resp.Tracks...)
		skipped += resp.Skipped

		e.logger.Debug("fetched page", "page", page, "tracks", len(resp.Tracks), "found", len(collected), "total", resp.Total)
		e.sendProgress(progress, fetchPageUpdate(page, len(collected), resp.Total))

		next = resp.Next
	}

	slices.Reverse(collected)
	list := models.LikedList(collected)

	if skipped > 0 {
		e.logger.Warn("skipped unplayable items", "count", skipped)
	}

	e.logger.Info("completed finding liked tracks", "total", len(list), "pages", page)
	if oldest, ok := list.Oldest(); ok {
		newest, _ := list.Newest()
		e.logger.Info("liked range", "oldest", oldest.String(), "newest", newest.String())
	}

	e.sendProgress(progress, fetchDoneUpdate(list))
	return list, nil
}

func (e *Engine) logFetchError(pageURL string, err error) {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		e.logger.Error("failed to get liked tracks", "url", pageURL, "status", apiErr.StatusCode, "body", apiErr.Body)
		return
	}
	e.logger.Error("failed to get liked tracks", "url", pageURL, "error", err)
}
