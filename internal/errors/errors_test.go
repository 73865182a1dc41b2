package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localstack/tflocal/internal/errors"
)

func TestNewPreservesErrorChain(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("base failure")
	wrapped := errors.New(base)

	require.Error(t, wrapped)
	assert.True(t, errors.Is(wrapped, base))
	assert.NotEmpty(t, errors.StackTrace(wrapped))

	assert.NoError(t, errors.New(nil))
}

func TestErrorWithExitCode(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("terraform exited")
	err := errors.ErrorWithExitCode{Err: base, ExitCode: 2}

	assert.Equal(t, "terraform exited", err.Error())
	assert.True(t, errors.Is(err, base))

	var target errors.ErrorWithExitCode
	require.True(t, errors.As(errors.New(err), &target))
	assert.Equal(t, 2, target.ExitCode)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var recovered error

	func() {
		defer errors.Recover(func(cause error) {
			recovered = cause
		})

		panic("something went wrong")
	}()

	require.Error(t, recovered)
	assert.Contains(t, recovered.Error(), "something went wrong")
	assert.NotEmpty(t, errors.StackTrace(recovered))
}
