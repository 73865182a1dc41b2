// Package options defines the configuration for a single tflocal run. All environment-derived
// settings are read exactly once, at process start, into an immutable TflocalOptions value that
// is passed into every component.
package options

import (
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/localstack/tflocal/pkg/env"
	"github.com/sirupsen/logrus"
)

const (
	// TerraformDefaultPath just takes terraform from the PATH.
	TerraformDefaultPath = "terraform"

	// DefaultEdgePort is the port the LocalStack edge service listens on.
	DefaultEdgePort = 4566

	// DefaultRegion is used whenever neither the environment nor the parsed configuration names one.
	DefaultRegion = "us-east-1"

	// DefaultAccessKey is the mock credential accepted by LocalStack.
	DefaultAccessKey = "test"

	// LocalhostDomain is the base domain that resolves to 127.0.0.1 for LocalStack setups.
	LocalhostDomain = "localhost.localstack.cloud"

	// DefaultLocalstackHostname is the general hostname used for service endpoints.
	DefaultLocalstackHostname = "localhost"

	// DefaultProvidersFile is the name of the generated override file.
	DefaultProvidersFile = "localstack_providers_override.tf"
)

// DefaultS3Hostname is the virtual-host-style hostname assigned to the S3 service.
var DefaultS3Hostname = "s3." + LocalhostDomain

// DefaultUnproxiedCommands are terraform commands that never talk to any AWS API, so no
// override file is generated for them.
var DefaultUnproxiedCommands = []string{"fmt", "validate", "version"}

// TflocalOptions holds every setting for a single run. Apart from the detected version fields,
// which are populated by an explicit initialization step in the cli package, the value is never
// mutated after construction.
type TflocalOptions struct {
	// TerraformPath is the binary to wrap (TF_CMD), e.g. "terraform" or "tofu".
	TerraformPath string

	// WorkingDir is the directory terraform operates on (cwd or -chdir). File scanning,
	// lock-file reading, and override placement all happen here.
	WorkingDir string

	// InvocationDir is the directory the wrapper was started from. The wrapped tool is
	// launched from here so a forwarded -chdir flag resolves exactly once.
	InvocationDir string

	// DryRun only generates the override file, without AWS calls or a terraform invocation.
	DryRun bool

	// UseExec replaces this process with terraform instead of running it as a child.
	UseExec bool

	// EdgePort is the LocalStack edge port, from AWS_ENDPOINT_URL or EDGE_PORT.
	EdgePort int

	// LocalstackHostname is the general endpoint hostname, from AWS_ENDPOINT_URL or
	// LOCALSTACK_HOSTNAME.
	LocalstackHostname string

	// S3Hostname is the hostname used for the S3 service endpoint (S3_HOSTNAME).
	S3Hostname string

	DefaultRegion      string
	CustomizeAccessKey bool

	// SkipAliases lists provider aliases that never get an override block (SKIP_ALIASES).
	SkipAliases []string

	// ProvidersFile is the name of the override file to generate (PROVIDERS_FILE).
	ProvidersFile string

	// UnproxiedCommands are terraform commands that bypass override generation entirely.
	UnproxiedCommands []string

	// AdditionalOverrideDirs are extra module directories that also receive the override
	// file (ADDITIONAL_TF_OVERRIDE_LOCATIONS).
	AdditionalOverrideDirs []string

	// Env is the process environment snapshot, used for per-service endpoint overrides and
	// passed to the terraform subprocess.
	Env map[string]string

	Logger    *logrus.Entry
	Writer    io.Writer
	ErrWriter io.Writer

	// TerraformVersion is the wrapped tool's version. Populated by cli.PopulateVersions;
	// nil until then.
	TerraformVersion *version.Version

	// ProviderVersion is the AWS provider plugin version from .terraform.lock.hcl, or nil
	// when no lock file is present.
	ProviderVersion *version.Version
}

// NewTflocalOptions reads the environment once and returns the options snapshot for this run.
func NewTflocalOptions() *TflocalOptions {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if env.GetBoolEnv("TFLOCAL_DEBUG", false) {
		logger.SetLevel(logrus.DebugLevel)
	}

	opts := &TflocalOptions{
		TerraformPath:          env.GetStringEnv("TF_CMD", TerraformDefaultPath),
		DryRun:                 env.GetBoolEnv("DRY_RUN", false),
		UseExec:                env.GetBoolEnv("USE_EXEC", false),
		EdgePort:               env.GetIntEnv("EDGE_PORT", DefaultEdgePort),
		LocalstackHostname:     env.GetStringEnv("LOCALSTACK_HOSTNAME", DefaultLocalstackHostname),
		S3Hostname:             env.GetStringEnv("S3_HOSTNAME", DefaultS3Hostname),
		DefaultRegion:          env.GetStringEnv("AWS_DEFAULT_REGION", DefaultRegion),
		CustomizeAccessKey:     env.GetBoolEnv("CUSTOMIZE_ACCESS_KEY", false),
		SkipAliases:            env.GetSliceEnv("SKIP_ALIASES", nil),
		ProvidersFile:          env.GetStringEnv("PROVIDERS_FILE", DefaultProvidersFile),
		UnproxiedCommands:      env.GetSliceEnv("TF_UNPROXIED_CMDS", DefaultUnproxiedCommands),
		AdditionalOverrideDirs: env.GetSliceEnv("ADDITIONAL_TF_OVERRIDE_LOCATIONS", nil),
		Env:                    parseEnvironmentVariables(os.Environ()),
		Logger:                 logrus.NewEntry(logger),
		Writer:                 os.Stdout,
		ErrWriter:              os.Stderr,
	}

	// AWS_ENDPOINT_URL wins over the legacy LOCALSTACK_HOSTNAME/EDGE_PORT pair.
	if endpointURL, ok := env.LookupEnv("AWS_ENDPOINT_URL"); ok {
		if parsed, err := url.Parse(endpointURL); err == nil && parsed.Hostname() != "" {
			opts.LocalstackHostname = parsed.Hostname()

			if portStr := parsed.Port(); portStr != "" {
				if port, err := strconv.Atoi(portStr); err == nil {
					opts.EdgePort = port
				}
			}
		}
	}

	if workingDir, err := os.Getwd(); err == nil {
		opts.WorkingDir = workingDir
		opts.InvocationDir = workingDir
	}

	return opts
}

// IsUnproxiedCommand returns true if the given terraform command is in the unproxied set, in
// which case no override file is generated at all.
func (opts *TflocalOptions) IsUnproxiedCommand(command string) bool {
	for _, unproxied := range opts.UnproxiedCommands {
		if strings.EqualFold(command, unproxied) {
			return true
		}
	}

	return false
}

// OverrideDirs returns every directory that must receive the override file for this run.
func (opts *TflocalOptions) OverrideDirs() []string {
	return append([]string{opts.WorkingDir}, opts.AdditionalOverrideDirs...)
}

func parseEnvironmentVariables(environment []string) map[string]string {
	environmentMap := make(map[string]string)

	for _, variable := range environment {
		if key, value, found := strings.Cut(variable, "="); found {
			environmentMap[key] = value
		}
	}

	return environmentMap
}
