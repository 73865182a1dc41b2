//go:build !windows

package shell

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
)

// ExecTerraformCommand replaces the current process image with the wrapped tool. No signal
// forwarding is needed in this mode, but nothing runs after the child exits either, so the
// caller gives up the chance to clean up generated files. That tradeoff is the caller's to
// make.
func ExecTerraformCommand(opts *options.TflocalOptions, args ...string) error {
	binaryPath, err := exec.LookPath(opts.TerraformPath)
	if err != nil {
		return errors.New(err)
	}

	// Stay in the invocation directory: a forwarded -chdir flag must resolve against the
	// same cwd it was typed in.
	if opts.InvocationDir != "" {
		if err := os.Chdir(opts.InvocationDir); err != nil {
			return errors.New(err)
		}
	}

	argv := append([]string{binaryPath}, args...)

	return errors.New(syscall.Exec(binaryPath, argv, toEnvVarsList(opts.Env)))
}
