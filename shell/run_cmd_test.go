package shell_test

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/shell"
)

func newTestOptions(t *testing.T) *options.TflocalOptions {
	t.Helper()

	return &options.TflocalOptions{
		WorkingDir: t.TempDir(),
		Env:        map[string]string{"PATH": "/usr/bin:/bin"},
		Logger:     logrus.NewEntry(logrus.New()),
	}
}

func TestRunTerraformCommandAndCaptureOutput(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t)
	opts.TerraformPath = "echo"

	output, err := shell.RunTerraformCommandAndCaptureOutput(opts, "version", "-json")
	require.NoError(t, err)
	assert.Contains(t, output, "version -json")
}

func TestRunTerraformCommandMissingBinary(t *testing.T) {
	t.Parallel()

	opts := newTestOptions(t)
	opts.TerraformPath = "definitely-not-a-real-binary"

	err := shell.RunTerraformCommand(opts)
	require.Error(t, err)
}

func TestGetExitCode(t *testing.T) {
	t.Parallel()

	code, err := shell.GetExitCode(errors.ErrorWithExitCode{Err: fmt.Errorf("terraform failed"), ExitCode: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	wrapped := errors.New(errors.ErrorWithExitCode{Err: fmt.Errorf("terraform failed"), ExitCode: 1})
	code, err = shell.GetExitCode(wrapped)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	plain := fmt.Errorf("no exit code here")
	_, err = shell.GetExitCode(plain)
	assert.Equal(t, plain, err)
}
