package usecase

import (
	"context"
	"fmt"
	"sync"

	"diy-research-agent/internal/domain"
)

// TaskResult is one slot of a fan-out run: either the worker's value or the
// error that kept it empty. Index always matches the input position.
type TaskResult[R any] struct {
	Index int
	Value R
	Err   error
}

// FanOut runs worker over every item with at most limit invocations in
// flight at once and returns one result per item, in input order. A slot is
// freed the moment its worker returns, so a fast item never waits for a
// "batch" to complete. Item failures (including worker panics) are captured
// in their slot and never abort the other items.
//
// limit < 1 is a caller bug and returns an error; an empty item slice
// returns an empty result without invoking the worker.
func FanOut[T, R any](ctx context.Context, items []T, limit int, worker func(context.Context, T) (R, error)) ([]TaskResult[R], error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: fan-out limit must be >= 1, got %d", domain.ErrInvalidArgument, limit)
	}
	results := make([]TaskResult[R], len(items))
	if len(items) == 0 {
		return results, nil
	}

	gate := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		gate <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-gate }()
			results[i] = runOne(ctx, i, item, worker)
		}(i, item)
	}
	wg.Wait()
	return results, nil
}

func runOne[T, R any](ctx context.Context, index int, item T, worker func(context.Context, T) (R, error)) (res TaskResult[R]) {
	res.Index = index
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	res.Value, res.Err = worker(ctx, item)
	return res
}
