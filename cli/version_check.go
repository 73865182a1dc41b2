package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/shell"
)

const (
	terraformLockFile = ".terraform.lock.hcl"
	awsProviderSuffix = "/hashicorp/aws"
)

// terraformVersionOutput is the subset of `terraform version -json` we care
// about. OpenTofu emits the same shape.
type terraformVersionOutput struct {
	TerraformVersion string `json:"terraform_version"`
}

// PopulateVersions fills in opts.TerraformVersion and opts.ProviderVersion.
// The tool version is mandatory since it decides how the backend override is
// serialized; the provider version is best effort and stays nil when the
// working directory has no lock file.
func PopulateVersions(opts *options.TflocalOptions) error {
	terraformVersion, err := detectTerraformVersion(opts)
	if err != nil {
		return err
	}
	opts.TerraformVersion = terraformVersion

	opts.ProviderVersion = detectAwsProviderVersion(opts)

	opts.Logger.Debugf("Detected %s version %s", opts.TerraformPath, terraformVersion)
	if opts.ProviderVersion != nil {
		opts.Logger.Debugf("Detected AWS provider version %s", opts.ProviderVersion)
	}

	return nil
}

func detectTerraformVersion(opts *options.TflocalOptions) (*version.Version, error) {
	output, err := shell.RunTerraformCommandAndCaptureOutput(opts, "version", "-json")
	if err != nil {
		return nil, errors.Errorf("unable to determine the version of %s: %w", opts.TerraformPath, err)
	}

	parsed := terraformVersionOutput{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return nil, errors.Errorf("unable to parse the version output of %s: %w", opts.TerraformPath, err)
	}

	terraformVersion, err := version.NewVersion(parsed.TerraformVersion)
	if err != nil {
		return nil, errors.Errorf("unable to parse version string %q reported by %s: %w", parsed.TerraformVersion, opts.TerraformPath, err)
	}

	return terraformVersion, nil
}

// detectAwsProviderVersion reads the dependency lock file and extracts the
// pinned hashicorp/aws provider version. Any failure along the way just means
// we do not know the provider version, which is a supported state.
func detectAwsProviderVersion(opts *options.TflocalOptions) *version.Version {
	lockFilePath := filepath.Join(opts.WorkingDir, terraformLockFile)

	content, err := os.ReadFile(lockFilePath)
	if err != nil {
		return nil
	}

	file, diags := hclparse.NewParser().ParseHCL(content, lockFilePath)
	if diags.HasErrors() {
		opts.Logger.Warnf("Skipping malformed lock file %s: %s", lockFilePath, diags.Error())
		return nil
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	for _, block := range body.Blocks {
		if block.Type != "provider" || len(block.Labels) != 1 {
			continue
		}
		if !strings.HasSuffix(block.Labels[0], awsProviderSuffix) {
			continue
		}

		attr, found := block.Body.Attributes["version"]
		if !found {
			continue
		}

		value, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() || value.Type() != cty.String {
			continue
		}

		providerVersion, err := version.NewVersion(value.AsString())
		if err != nil {
			opts.Logger.Warnf("Skipping unparseable AWS provider version %q in %s", value.AsString(), lockFilePath)
			return nil
		}

		return providerVersion
	}

	return nil
}
