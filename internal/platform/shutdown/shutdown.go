// Package shutdown provides a context cancelled on SIGINT/SIGTERM so
// long-running processes (the HTTP server, the cpu/gpu workers) can drain
// in-flight work before exiting.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
