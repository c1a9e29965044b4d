// CLAUDE:SUMMARY Generic chunked batch scheduler — serial chunks, concurrent items, progress events, partial failure.
// Package batch is the chunked-iteration engine behind every bulk command:
// it splits a work list into fixed-size chunks, runs chunks strictly in
// order with the items of each chunk in flight together, pauses between
// chunks so the plugin channel and the host UI keep up, aggregates per-item
// success/failure, and streams progress through a progress.Reporter.
//
// A failing item never aborts the batch. The only error terminal is a
// precondition failure before the first chunk runs.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hazyhaar/canvasqa/progress"
)

// Progress interpolation: the first 5% is reserved for planning, the last 5%
// for finalization, chunk processing spans the range in between.
const (
	progressFloor = 5
	progressSpan  = 90
)

// DefaultChunkSize is used when the caller does not specify one.
const DefaultChunkSize = 10

// Options tunes one Run.
type Options struct {
	// ChunkSize is the number of items per chunk. <= 0 means DefaultChunkSize.
	ChunkSize int
	// ChunkPause is the pause inserted after each chunk. Zero means no pause.
	ChunkPause time.Duration
	// ItemPause is the pause inserted after each item within a chunk.
	// Zero means no pause.
	ItemPause time.Duration
}

// ItemResult records the outcome for one work item, in input order.
type ItemResult[R any] struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Result  R      `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary aggregates a completed batch. Success is true iff at least one
// item succeeded.
type Summary[R any] struct {
	Success   bool            `json:"success"`
	Total     int             `json:"total"`
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []ItemResult[R] `json:"results"`
}

// Run executes perItem over items in chunks, reporting progress through rep.
// Chunks run serially; within a chunk every item runs in its own goroutine
// and the chunk completes when all of them return. Results keep input order.
//
// perItem errors are recorded, not propagated. Run itself returns an error
// only when ctx is cancelled between chunks, after emitting the terminal
// error event.
func Run[T, R any](ctx context.Context, items []T, opts Options, rep *progress.Reporter, perItem func(context.Context, T) (R, error)) (*Summary[R], error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	total := len(items)
	totalChunks := (total + chunkSize - 1) / chunkSize

	rep.Started(ctx, total, fmt.Sprintf("starting batch of %d items in %d chunks", total, totalChunks))

	summary := &Summary[R]{
		Total:   total,
		Results: make([]ItemResult[R], total),
	}

	for chunk := 0; chunk < totalChunks; chunk++ {
		if err := ctx.Err(); err != nil {
			rep.Error(ctx, fmt.Sprintf("batch cancelled before chunk %d/%d: %v", chunk+1, totalChunks, err))
			return summary, fmt.Errorf("batch: cancelled: %w", err)
		}

		start := chunk * chunkSize
		end := min(start+chunkSize, total)

		rep.Emit(ctx, progress.Event{
			Status:         progress.StatusInProgress,
			Progress:       interpolate(summary.Processed, total),
			TotalItems:     total,
			ProcessedItems: summary.Processed,
			CurrentChunk:   chunk + 1,
			TotalChunks:    totalChunks,
			ChunkSize:      chunkSize,
			Message:        fmt.Sprintf("processing chunk %d/%d", chunk+1, totalChunks),
		})

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := runItem(ctx, items[i], perItem)
				r := ItemResult[R]{Index: i}
				if err != nil {
					r.Error = err.Error()
				} else {
					r.Success = true
					r.Result = res
				}
				summary.Results[i] = r
				if opts.ItemPause > 0 {
					time.Sleep(opts.ItemPause)
				}
			}(i)
		}
		wg.Wait()

		for i := start; i < end; i++ {
			summary.Processed++
			if summary.Results[i].Success {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
		}

		rep.Emit(ctx, progress.Event{
			Status:         progress.StatusInProgress,
			Progress:       interpolate(summary.Processed, total),
			TotalItems:     total,
			ProcessedItems: summary.Processed,
			CurrentChunk:   chunk + 1,
			TotalChunks:    totalChunks,
			ChunkSize:      chunkSize,
			Message:        fmt.Sprintf("chunk %d/%d complete", chunk+1, totalChunks),
		})

		if opts.ChunkPause > 0 && chunk < totalChunks-1 {
			select {
			case <-time.After(opts.ChunkPause):
			case <-ctx.Done():
			}
		}
	}

	summary.Success = summary.Succeeded > 0
	rep.Completed(ctx, total, summary.Processed, summary,
		fmt.Sprintf("batch complete: %d succeeded, %d failed", summary.Succeeded, summary.Failed))
	return summary, nil
}

// runItem isolates perItem panics so one bad item cannot take down the batch.
func runItem[T, R any](ctx context.Context, item T, perItem func(context.Context, T) (R, error)) (res R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("batch: item panicked: %v", rec)
		}
	}()
	return perItem(ctx, item)
}

// interpolate maps processed/total onto the 5-95% chunk-processing range.
func interpolate(processed, total int) int {
	if total <= 0 {
		return progressFloor + progressSpan
	}
	return progressFloor + processed*progressSpan/total
}
