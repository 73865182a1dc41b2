package codegen_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localstack/tflocal/codegen"
	"github.com/localstack/tflocal/config"
	"github.com/localstack/tflocal/endpoints"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/services"
)

func newTestOptions() *options.TflocalOptions {
	return &options.TflocalOptions{
		EdgePort:           options.DefaultEdgePort,
		LocalstackHostname: options.DefaultLocalstackHostname,
		S3Hostname:         options.DefaultS3Hostname,
		DefaultRegion:      options.DefaultRegion,
		ProvidersFile:      options.DefaultProvidersFile,
		Env:                map[string]string{},
		Logger:             logrus.NewEntry(logrus.New()),
	}
}

func newTestGenerator(opts *options.TflocalOptions) *codegen.Generator {
	return codegen.NewGenerator(opts, endpoints.NewResolver(opts))
}

// normalize collapses the alignment whitespace hclwrite inserts, so assertions
// can use single-space attribute syntax.
func normalize(document []byte) string {
	return strings.Join(strings.Fields(string(document)), " ")
}

func TestDocumentSynthesizesDefaultProvider(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{})
	require.NoError(t, err)

	text := normalize(document)
	assert.Equal(t, 1, strings.Count(text, `provider "aws"`))
	assert.Contains(t, text, `access_key = "test"`)
	assert.Contains(t, text, `secret_key = "test"`)
	assert.Contains(t, text, `skip_credentials_validation = true`)
	assert.Contains(t, text, `skip_metadata_api_check = true`)
	assert.Contains(t, text, `region = "us-east-1"`)
	assert.NotContains(t, text, "alias")

	// Virtual-host-style S3 hostname, so no path-style flag.
	assert.NotContains(t, text, "s3_use_path_style")

	// One endpoint line per directory entry, every one pointing at LocalStack.
	for _, service := range services.EndpointNames(nil) {
		assert.Contains(t, text, fmt.Sprintf("%s = ", service))
	}
	assert.Contains(t, text, `sqs = "http://localhost:4566"`)
	assert.Contains(t, text, `s3 = "http://s3.localhost.localstack.cloud:4566"`)
	assert.Contains(t, text, `mwaa = "http://mwaa.localhost.localstack.cloud:4566"`)
	assert.NotContains(t, text, "edge =")
}

func TestDocumentKeepsDeclaredAliases(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{
		Providers: []config.ProviderAlias{
			{Region: "eu-west-1"},
			{Alias: "us", Region: "us-west-2"},
		},
	})
	require.NoError(t, err)

	text := normalize(document)
	assert.Equal(t, 2, strings.Count(text, `provider "aws"`))
	assert.Contains(t, text, `alias = "us"`)
	assert.Contains(t, text, `region = "eu-west-1"`)
	assert.Contains(t, text, `region = "us-west-2"`)
}

func TestDocumentSkipsConfiguredAliases(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.SkipAliases = []string{"us", "default"}
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{
		Providers: []config.ProviderAlias{
			{Region: "eu-west-1"},
			{Alias: "us", Region: "us-west-2"},
			{Alias: "eu", Region: "eu-central-1"},
		},
	})
	require.NoError(t, err)

	text := normalize(document)
	assert.Equal(t, 1, strings.Count(text, `provider "aws"`))
	assert.Contains(t, text, `alias = "eu"`)
	assert.NotContains(t, text, `"us-west-2"`)
	assert.NotContains(t, text, `"eu-west-1"`)
}

func TestDocumentEmitsPathStyleFlag(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.S3Hostname = "localhost"
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{})
	require.NoError(t, err)

	assert.Contains(t, normalize(document), "s3_use_path_style = true")
}

func TestDocumentIsDeterministic(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.7.5"))
	generator := newTestGenerator(opts)

	discovery := &config.Discovery{
		Providers: []config.ProviderAlias{{Region: "eu-west-1"}},
		Backend: &config.Backend{
			Filename: "backend.tf",
			Settings: map[string]any{"bucket": "my-state", "encrypt": true},
		},
		RemoteStates: []config.RemoteState{
			{Name: "network", Settings: map[string]any{"bucket": "network-state"}},
		},
	}

	first, err := generator.Document(discovery)
	require.NoError(t, err)

	second, err := generator.Document(discovery)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBackendModernEndpoints(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.7.5"))
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{
		Backend: &config.Backend{
			Filename: "backend.tf",
			Settings: map[string]any{"bucket": "my-state"},
		},
	})
	require.NoError(t, err)

	text := normalize(document)
	assert.Contains(t, text, `backend "s3"`)
	assert.Contains(t, text, `bucket = "my-state"`)
	assert.Contains(t, text, `key = "terraform.tfstate"`)
	assert.Contains(t, text, "endpoints = {")
	assert.NotContains(t, text, "iam_endpoint")
	assert.NotContains(t, text, "sts_endpoint")
	assert.NotContains(t, text, "dynamodb_endpoint")
}

func TestBackendLegacyEndpoints(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.5.7"))
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{
		Backend: &config.Backend{
			Filename: "backend.tf",
			Settings: map[string]any{"bucket": "my-state"},
		},
	})
	require.NoError(t, err)

	text := normalize(document)
	assert.Contains(t, text, `endpoint = "http://s3.localhost.localstack.cloud:4566"`)
	assert.Contains(t, text, `iam_endpoint = "http://localhost:4566"`)
	assert.Contains(t, text, `sts_endpoint = "http://localhost:4566"`)
	assert.Contains(t, text, `dynamodb_endpoint = "http://localhost:4566"`)
	assert.NotContains(t, text, "endpoints = {")
}

func TestBackendNestedEndpointsOnLegacyVersionFails(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.5.0"))
	generator := newTestGenerator(opts)

	_, err := generator.Document(&config.Discovery{
		Backend: &config.Backend{
			Filename: "backend.tf",
			Settings: map[string]any{
				"bucket":    "my-state",
				"endpoints": map[string]any{"s3": "http://custom:4566"},
			},
		},
	})
	require.Error(t, err)

	var conflictErr codegen.LegacyEndpointsConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "1.5.0", conflictErr.TerraformVersion)
}

func TestMergedBackendFoldsLegacyFields(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.9.0"))
	generator := newTestGenerator(opts)

	merged, err := generator.MergedBackend(&config.Backend{
		Filename: "backend.tf",
		Settings: map[string]any{
			"bucket":            "my-state",
			"dynamodb_endpoint": "http://dynamo.internal:4566",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "my-state", merged["bucket"])
	assert.NotContains(t, merged, "dynamodb_endpoint")

	mergedEndpoints, ok := merged["endpoints"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "http://dynamo.internal:4566", mergedEndpoints["dynamodb"])
	assert.Equal(t, "http://s3.localhost.localstack.cloud:4566", mergedEndpoints["s3"])
}

func TestMergedBackendDefaults(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.7.5"))
	generator := newTestGenerator(opts)

	merged, err := generator.MergedBackend(&config.Backend{
		Filename: "backend.tf",
		Settings: map[string]any{},
	})
	require.NoError(t, err)

	assert.Equal(t, codegen.DefaultStateBucket, merged["bucket"])
	assert.Equal(t, codegen.DefaultStateKey, merged["key"])
	assert.Equal(t, "us-east-1", merged["region"])
	assert.Equal(t, "test", merged["access_key"])
	assert.Equal(t, "test", merged["secret_key"])
	assert.Equal(t, true, merged["skip_credentials_validation"])
}

func TestRemoteStateBlock(t *testing.T) {
	t.Parallel()

	opts := newTestOptions()
	opts.TerraformVersion = version.Must(version.NewVersion("1.7.5"))
	generator := newTestGenerator(opts)

	document, err := generator.Document(&config.Discovery{
		RemoteStates: []config.RemoteState{
			{
				Name:     "network",
				Settings: map[string]any{"bucket": "network-state"},
			},
			{
				Name:            "dynamic",
				Settings:        map[string]any{"bucket": "dynamic-state"},
				Workspace:       "terraform.workspace",
				WorkspaceIsExpr: true,
			},
		},
	})
	require.NoError(t, err)

	text := normalize(document)
	assert.Contains(t, text, `data "terraform_remote_state" "network"`)
	assert.Contains(t, text, `data "terraform_remote_state" "dynamic"`)
	assert.Contains(t, text, `backend = "s3"`)
	assert.Contains(t, text, `"network-state"`)

	// The interpolated workspace passes through unquoted.
	assert.Contains(t, text, "workspace = terraform.workspace")
	assert.NotContains(t, text, `"terraform.workspace"`)
}
