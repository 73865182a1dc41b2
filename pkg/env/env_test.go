package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localstack/tflocal/pkg/env"
)

func TestGetBoolEnv(t *testing.T) {
	testCases := []struct {
		value    string
		fallback bool
		expected bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"TRUE", false, true},
		{"0", true, false},
		{"false", true, false},
		{"", true, true},
		{"garbage", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv("TFLOCAL_TEST_BOOL", tc.value)
			}

			assert.Equal(t, tc.expected, env.GetBoolEnv("TFLOCAL_TEST_BOOL", tc.fallback))
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("TFLOCAL_TEST_INT", "4567")
	assert.Equal(t, 4567, env.GetIntEnv("TFLOCAL_TEST_INT", 4566))

	t.Setenv("TFLOCAL_TEST_INT", "not-a-number")
	assert.Equal(t, 4566, env.GetIntEnv("TFLOCAL_TEST_INT", 4566))

	assert.Equal(t, 4566, env.GetIntEnv("TFLOCAL_TEST_INT_UNSET", 4566))
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("TFLOCAL_TEST_SLICE", "fmt, validate ,version,,")
	assert.Equal(t, []string{"fmt", "validate", "version"}, env.GetSliceEnv("TFLOCAL_TEST_SLICE", nil))

	fallback := []string{"fmt"}
	assert.Equal(t, fallback, env.GetSliceEnv("TFLOCAL_TEST_SLICE_UNSET", fallback))
}
