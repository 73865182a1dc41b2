package shell

import (
	"os"
	"os/exec"
	"os/signal"

	"github.com/localstack/tflocal/options"
)

type SignalsForwarder chan os.Signal

// NewSignalsForwarder forwards signals to a command, waiting for the command to finish.
func NewSignalsForwarder(signals []os.Signal, c *exec.Cmd, opts *options.TflocalOptions, cmdChannel chan error) SignalsForwarder {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, signals...)

	go func() {
		for {
			select {
			case s := <-signalChannel:
				if s == nil {
					continue
				}

				opts.Logger.Debugf("Forwarding signal %v to %s", s, opts.TerraformPath)

				if err := c.Process.Signal(s); err != nil {
					opts.Logger.Warnf("Error forwarding signal: %v", err)
				}
			case <-cmdChannel:
				return
			}
		}
	}()

	return signalChannel
}

func (signalChannel *SignalsForwarder) Close() error {
	signal.Stop(*signalChannel)
	*signalChannel <- nil
	close(*signalChannel)

	return nil
}
