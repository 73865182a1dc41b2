// Package shell invokes the wrapped terraform binary. The child inherits this process's
// stdio, receives forwarded interrupt signals so it can shut down gracefully, and its exit
// code is propagated unmodified.
package shell

import (
	"os"
	"os/exec"
	"strings"

	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
)

// RunTerraformCommand runs the wrapped tool with the given arguments as a child process,
// connecting its stdin, stdout, and stderr to this process, and waits for it to finish.
// Signals received while waiting are forwarded to the child rather than handled here.
//
// The child starts in the wrapper's invocation directory, not the chdir-resolved working
// directory: a forwarded -chdir flag must resolve against the same cwd it was typed in.
func RunTerraformCommand(opts *options.TflocalOptions, args ...string) error {
	opts.Logger.Debugf("Running command: %s %s", opts.TerraformPath, strings.Join(args, " "))

	cmd := exec.Command(opts.TerraformPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = opts.Writer
	cmd.Stderr = opts.ErrWriter
	cmd.Env = toEnvVarsList(opts.Env)
	cmd.Dir = opts.InvocationDir

	if err := cmd.Start(); err != nil {
		// bad path, binary not executable, &c
		return errors.New(err)
	}

	cmdChannel := make(chan error)
	signalChannel := NewSignalsForwarder(InterruptSignals, cmd, opts, cmdChannel)

	defer func() {
		_ = signalChannel.Close()
	}()

	err := cmd.Wait()
	cmdChannel <- err

	return errors.New(err)
}

// RunTerraformCommandAndCaptureOutput runs the wrapped tool and returns its stdout as a
// string, discarding stderr. Used for internal calls such as version detection that must not
// pollute the user-visible output.
func RunTerraformCommandAndCaptureOutput(opts *options.TflocalOptions, args ...string) (string, error) {
	cmd := exec.Command(opts.TerraformPath, args...)
	cmd.Env = toEnvVarsList(opts.Env)
	cmd.Dir = opts.WorkingDir

	output, err := cmd.Output()
	if err != nil {
		return "", errors.New(err)
	}

	return string(output), nil
}

// GetExitCode returns the exit code of a finished command. Errors that carry no exit code
// are returned as-is.
func GetExitCode(err error) (int, error) {
	var exitCodeErr errors.ErrorWithExitCode
	if errors.As(err, &exitCodeErr) {
		return exitCodeErr.ExitCode, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return 0, err
}

func toEnvVarsList(envVarsAsMap map[string]string) []string {
	envVarsAsList := make([]string, 0, len(envVarsAsMap))

	for key, value := range envVarsAsMap {
		envVarsAsList = append(envVarsAsList, key+"="+value)
	}

	return envVarsAsList
}
