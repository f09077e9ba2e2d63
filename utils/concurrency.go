package utils

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// SplitWork Runs do for every workIndex in [0, workSize) across routines goroutines.
// Work items are handed out in ascending order from a shared counter. The context is checked before each item is taken,
// so cancellation stops the pool between items and SplitWork returns ctx.Err().
//
// If routines <= 0, runtime.NumCPU() is used. init, if not nil, is called once per routine before any work starts.
func SplitWork(ctx context.Context, routines int, workSize uint64, do func(workIndex uint64, routineIndex int) error, init func(routines, routineIndex int) error) error {
	if routines <= 0 {
		routines = runtime.NumCPU()
	}

	if workSize < uint64(routines) {
		routines = int(workSize)
	}

	if routines == 0 {
		return ctx.Err()
	}

	var counter atomic.Uint64

	if init != nil {
		for routineIndex := 0; routineIndex < routines; routineIndex++ {
			if err := init(routines, routineIndex); err != nil {
				return err
			}
		}
	}

	eg, ctx := errgroup.WithContext(ctx)

	for routineIndex := 0; routineIndex < routines; routineIndex++ {
		innerRoutineIndex := routineIndex
		eg.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}

				workIndex := counter.Add(1)
				if workIndex > workSize {
					return nil
				}

				if err := do(workIndex-1, innerRoutineIndex); err != nil {
					return err
				}
			}
		})
	}
	return eg.Wait()
}
