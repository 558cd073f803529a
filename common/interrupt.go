package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptedContext is canceled on the first interrupt, SIGTERM or SIGQUIT.
// A second signal kills the process as usual once stop has been called.
func InterruptedContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}
