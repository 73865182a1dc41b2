package services_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localstack/tflocal/services"
)

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected string
	}{
		{"config", "config"},
		{"configservice", "config"},
		{"es", "es"},
		{"elasticsearch", "es"},
		{"sqs", "sqs"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, services.CanonicalName(tc.name))
		})
	}
}

func TestEndpointNames(t *testing.T) {
	t.Parallel()

	names := services.EndpointNames(nil)
	require.NotEmpty(t, names)

	assert.True(t, sort.StringsAreSorted(names))

	seen := map[string]int{}
	for _, name := range names {
		seen[name]++

		assert.NotContains(t, name, "-", "endpoint names must not contain hyphens")
	}

	for name, count := range seen {
		assert.Equal(t, 1, count, "endpoint name %q appears more than once", name)
	}

	// Alias groups collapse onto their canonical member.
	assert.Contains(t, names, "config")
	assert.NotContains(t, names, "configservice")
	assert.Contains(t, names, "es")
	assert.NotContains(t, names, "elasticsearch")

	// Replacements apply after canonicalization.
	assert.Contains(t, names, "costexplorer")
	assert.NotContains(t, names, "ce")
	assert.Contains(t, names, "timestreamwrite")
	assert.NotContains(t, names, "timestream")

	// Dropped and excluded services never appear.
	for _, excluded := range []string{"edge", "meteringmarketplace", "dynamodbstreams", "iotdata", "iotwireless"} {
		assert.NotContains(t, names, excluded)
	}
}

func TestEndpointNamesProviderVersionExclusions(t *testing.T) {
	t.Parallel()

	v5 := version.Must(version.NewVersion("5.70.0"))
	v6 := version.Must(version.NewVersion("6.0.0"))

	assert.Contains(t, services.EndpointNames(nil), "simpledb")
	assert.Contains(t, services.EndpointNames(v5), "simpledb")
	assert.NotContains(t, services.EndpointNames(v6), "simpledb")

	assert.Contains(t, services.EndpointNames(v5), "iotanalytics")
	assert.NotContains(t, services.EndpointNames(v6), "iotanalytics")

	// Unaffected services survive the provider major bump.
	assert.Contains(t, services.EndpointNames(v6), "s3")
	assert.Contains(t, services.EndpointNames(v6), "sqs")
}

func TestSupportedByProvider(t *testing.T) {
	t.Parallel()

	v5 := version.Must(version.NewVersion("5.0.0"))
	v6 := version.Must(version.NewVersion("6.1.0"))

	assert.True(t, services.SupportedByProvider("simpledb", nil))
	assert.True(t, services.SupportedByProvider("simpledb", v5))
	assert.False(t, services.SupportedByProvider("simpledb", v6))
	assert.True(t, services.SupportedByProvider("s3", v6))
}

func TestNamesIsACopy(t *testing.T) {
	t.Parallel()

	names := services.Names()
	require.NotEmpty(t, names)

	original := names[0]
	names[0] = "mutated"

	assert.Equal(t, original, services.Names()[0])
	assert.False(t, strings.Contains(strings.Join(services.Names(), ","), "mutated"))
}
