//go:build !windows

package shell

import (
	"os"
	"syscall"
)

// InterruptSignals are forwarded to the wrapped tool so it can shut down gracefully.
var InterruptSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}
