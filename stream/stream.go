package stream

import (
	"context"
	"sync"
)

// Slice, Filter and Collect after:
// https://betterprogramming.pub/writing-a-stream-api-in-go-afbc3c4350e2

func Slice[T any](ctx context.Context, in []T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for _, element := range in {
			select {
			case <-ctx.Done():
				return
			case out <- element:
			}
		}
	}()
	return out
}

func Filter[T any](ctx context.Context, predicate func(T) bool, in <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for element := range in {
			if predicate(element) {
				select {
				case <-ctx.Done():
					return
				case out <- element:
				}
			}
		}
	}()
	return out
}

func Collect[T any](ctx context.Context, in <-chan T) []T {
	out := make([]T, 0)
	for element := range in {
		select {
		case <-ctx.Done():
			return out
		default:
			out = append(out, element)
		}
	}
	return out
}

// indexed is a work package; i is its position in the input.
type indexed[T any] struct {
	i int
	v T
}

// Ordered runs fn over in with up to workers goroutines and returns the
// outputs in input order. The first error cancels outstanding work and is
// returned; on error the outputs are discarded.
func Ordered[I any, O any](ctx context.Context, workers int, in []I, fn func(ctx context.Context, i int, element I) (O, error)) ([]O, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(in) {
		workers = len(in)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]O, len(in))
	workCh := make(chan indexed[I])
	wg := new(sync.WaitGroup)

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				o, err := fn(ctx, work.i, work.v)
				if err != nil {
					fail(err)
					continue
				}
				out[work.i] = o
			}
		}()
	}

feed:
	for i, v := range in {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- indexed[I]{i: i, v: v}:
		}
	}
	close(workCh)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	// The parent may have been canceled before any worker failed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
