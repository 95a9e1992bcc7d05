package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor sleeps for the duration but returns early with the context's error
// when it is cancelled. Every humanized delay in the pipeline goes through
// here so delays stay suspension points, not busy-waits.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
