//go:build windows

package shell

import (
	"github.com/localstack/tflocal/options"
)

// ExecTerraformCommand falls back to the regular child-process invocation on Windows, which
// has no execve equivalent.
func ExecTerraformCommand(opts *options.TflocalOptions, args ...string) error {
	return RunTerraformCommand(opts, args...)
}
