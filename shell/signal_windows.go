//go:build windows

package shell

import "os"

// InterruptSignals are forwarded to the wrapped tool so it can shut down gracefully.
var InterruptSignals = []os.Signal{os.Interrupt}
