package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/localstack/tflocal/cli"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/shell"
)

// The main entrypoint for tflocal
func main() {
	opts := options.NewTflocalOptions()

	defer errors.Recover(checkForErrorsAndExit(opts.Logger))

	app := cli.NewApp(opts)
	err := app.Run(os.Args)

	checkForErrorsAndExit(opts.Logger)(err)
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(logger *logrus.Entry) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		exitCode, exitCodeErr := shell.GetExitCode(err)
		if exitCodeErr != nil {
			// The failure happened before or instead of the wrapped tool, so
			// it is ours to report.
			exitCode = 1
			logger.Error(err.Error())

			if stack := errors.StackTrace(err); stack != "" {
				logger.Debug(stack)
			}
		}

		os.Exit(exitCode)
	}
}
