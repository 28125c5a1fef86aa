//go:build windows

package process

import (
	"context"
	"os"
	"os/signal"
)

// NotifyContext returns a context that is canceled when an interrupt
// signal is received. syscall.SIGTERM is not available on Windows.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
