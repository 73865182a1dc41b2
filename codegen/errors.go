package codegen

import "fmt"

// OverrideFileExistsError is returned when an override file this run did not create is already
// present in a target directory.
type OverrideFileExistsError struct {
	Path   string
	DryRun bool
}

func (err OverrideFileExistsError) Error() string {
	if err.DryRun {
		return fmt.Sprintf("Dry run aborted: %s already exists and overwriting was not confirmed", err.Path)
	}

	return fmt.Sprintf("Cannot generate override file: %s already exists. Please remove it and try again", err.Path)
}

// LegacyEndpointsConflictError is returned when a backend block carries the nested `endpoints`
// map but the detected terraform version only understands the legacy flat endpoint fields.
type LegacyEndpointsConflictError struct {
	TerraformVersion string
}

func (err LegacyEndpointsConflictError) Error() string {
	return fmt.Sprintf(
		"The nested `endpoints` backend attribute requires Terraform 1.6 or later, but version %s was detected. "+
			"Use the flat endpoint fields (endpoint, iam_endpoint, sts_endpoint, dynamodb_endpoint) instead",
		err.TerraformVersion)
}
