// Package runsignal gives the three non-HTTP binaries (worker,
// downsampler, alertengine) the same SIGINT/SIGTERM-triggered context
// cancellation the teacher's examples/order/api main wires by hand,
// without duplicating the os/signal plumbing in each cmd/*/main.go.
package runsignal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithCancelOnSignal returns a context that is cancelled the moment
// SIGINT or SIGTERM arrives. The returned stop func releases the
// signal.Notify registration and should be deferred by the caller.
func WithCancelOnSignal(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
