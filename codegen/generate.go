// Package codegen synthesizes the override document: the terraform configuration text that
// redirects every provider, backend, and remote-state endpoint to LocalStack.
//
// Each block type has its own structured builder with a single serialization routine, so the
// generated text is deterministic: identical inputs produce byte-identical output.
package codegen

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/localstack/tflocal/awshelper"
	"github.com/localstack/tflocal/config"
	"github.com/localstack/tflocal/endpoints"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/services"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const (
	// DefaultStateBucket and DefaultStateKey are used when the user's backend block leaves
	// them unset.
	DefaultStateBucket = "tf-test-state"
	DefaultStateKey    = "terraform.tfstate"

	// nestedEndpointsVersion is the first terraform version whose s3 backend accepts the
	// nested `endpoints` map instead of the legacy flat *_endpoint fields.
	nestedEndpointsVersionMajor = 1
	nestedEndpointsVersionMinor = 6
)

// legacyEndpointFields maps the legacy flat s3 backend fields onto their keys in the nested
// `endpoints` map.
var legacyEndpointFields = map[string]string{
	"endpoint":          "s3",
	"iam_endpoint":      "iam",
	"sts_endpoint":      "sts",
	"dynamodb_endpoint": "dynamodb",
}

// Generator builds the override document for one run.
type Generator struct {
	opts     *options.TflocalOptions
	resolver *endpoints.Resolver
}

func NewGenerator(opts *options.TflocalOptions, resolver *endpoints.Resolver) *Generator {
	return &Generator{opts: opts, resolver: resolver}
}

// Document generates the full override text: zero or more provider blocks, zero or one
// backend block, and zero or more remote-state blocks, in that order.
func (generator *Generator) Document(discovery *config.Discovery) ([]byte, error) {
	file := hclwrite.NewEmptyFile()

	generator.appendProviderBlocks(file, discovery.Providers)

	if discovery.Backend != nil {
		if err := generator.appendBackendBlock(file, discovery.Backend); err != nil {
			return nil, err
		}
	}

	for _, remoteState := range discovery.RemoteStates {
		if err := generator.appendRemoteStateBlock(file, remoteState); err != nil {
			return nil, err
		}
	}

	return hclwrite.Format(file.Bytes()), nil
}

// appendProviderBlocks emits one aws provider block per declared alias. When the user declared
// no alias-less provider, a synthetic default one is injected so the override always covers
// resources without an explicit provider reference.
func (generator *Generator) appendProviderBlocks(file *hclwrite.File, aliases []config.ProviderAlias) {
	hasDefault := false

	for _, alias := range aliases {
		if alias.Alias == "" {
			hasDefault = true
		}
	}

	if !hasDefault {
		aliases = append([]config.ProviderAlias{{Region: generator.opts.DefaultRegion}}, aliases...)
	}

	endpointNames := services.EndpointNames(generator.opts.ProviderVersion)

	for _, alias := range aliases {
		if generator.skipAlias(alias.Alias) {
			continue
		}

		if len(file.Body().Blocks()) > 0 {
			file.Body().AppendNewline()
		}

		block := file.Body().AppendNewBlock("provider", []string{"aws"})
		body := block.Body()

		body.SetAttributeValue("access_key", cty.StringVal(awshelper.ResolveAccessKey(generator.opts, alias.AccessKey)))
		body.SetAttributeValue("secret_key", cty.StringVal(options.DefaultAccessKey))
		body.SetAttributeValue("skip_credentials_validation", cty.True)
		body.SetAttributeValue("skip_metadata_api_check", cty.True)

		if generator.resolver.UseS3PathStyle() {
			body.SetAttributeValue("s3_use_path_style", cty.True)
		}

		if alias.Alias != "" {
			body.SetAttributeValue("alias", cty.StringVal(alias.Alias))
		}

		region := alias.Region
		if region == "" {
			region = generator.opts.DefaultRegion
		}

		body.SetAttributeValue("region", cty.StringVal(region))

		body.AppendNewline()
		endpointsBody := body.AppendNewBlock("endpoints", nil).Body()

		for _, service := range endpointNames {
			endpointsBody.SetAttributeValue(service, cty.StringVal(generator.resolver.Resolve(service)))
		}
	}
}

func (generator *Generator) skipAlias(alias string) bool {
	name := alias
	if name == "" {
		name = "default"
	}

	for _, skipped := range generator.opts.SkipAliases {
		if strings.EqualFold(name, skipped) {
			return true
		}
	}

	return false
}

// appendBackendBlock merges the discovered backend settings with the LocalStack defaults and
// emits a `terraform { backend "s3" { ... } }` block.
func (generator *Generator) appendBackendBlock(file *hclwrite.File, backend *config.Backend) error {
	settings, err := generator.mergeBackendSettings(backend.Settings)
	if err != nil {
		return err
	}

	if len(file.Body().Blocks()) > 0 {
		file.Body().AppendNewline()
	}

	body := file.Body().AppendNewBlock("terraform", nil).Body().AppendNewBlock("backend", []string{"s3"}).Body()

	return setSortedAttributes(body, settings)
}

// appendRemoteStateBlock emits a `data "terraform_remote_state"` block using the same merged
// settings shape as the backend, keyed by the user-chosen reference name. Remote-state
// references never trigger bucket or lock-table provisioning.
func (generator *Generator) appendRemoteStateBlock(file *hclwrite.File, remoteState config.RemoteState) error {
	settings, err := generator.mergeBackendSettings(remoteState.Settings)
	if err != nil {
		return err
	}

	if len(file.Body().Blocks()) > 0 {
		file.Body().AppendNewline()
	}

	body := file.Body().AppendNewBlock("data", []string{"terraform_remote_state", remoteState.Name}).Body()
	body.SetAttributeValue("backend", cty.StringVal("s3"))

	if remoteState.Workspace != "" {
		if remoteState.WorkspaceIsExpr {
			// The workspace attribute referenced something like terraform.workspace or a
			// variable. Pass the expression through verbatim.
			body.SetAttributeRaw("workspace", rawTokens(remoteState.Workspace))
		} else {
			body.SetAttributeValue("workspace", cty.StringVal(remoteState.Workspace))
		}
	}

	configVal, err := nativeToCty(settings)
	if err != nil {
		return err
	}

	body.SetAttributeValue("config", configVal)

	return nil
}

// MergedBackend exposes the merged backend settings for the bootstrap step (bucket and lock
// table names, region).
func (generator *Generator) MergedBackend(backend *config.Backend) (map[string]any, error) {
	return generator.mergeBackendSettings(backend.Settings)
}

// mergeBackendSettings overlays the user-supplied settings on the LocalStack defaults,
// normalizing the legacy and modern endpoint representations against the detected terraform
// version first. After normalization exactly one endpoint representation is active.
func (generator *Generator) mergeBackendSettings(userSettings map[string]any) (map[string]any, error) {
	user := make(map[string]any, len(userSettings))
	for key, value := range userSettings {
		user[key] = value
	}

	legacy := generator.legacyEndpointsRequired()

	if legacy {
		if _, ok := user["endpoints"]; ok {
			return nil, errors.New(LegacyEndpointsConflictError{TerraformVersion: generator.terraformVersionString()})
		}
	} else {
		foldLegacyEndpointFields(user)
	}

	merged := generator.defaultBackendSettings(legacy)

	for key, value := range user {
		if key == "endpoints" {
			continue
		}

		merged[key] = value
	}

	if !legacy {
		mergedEndpoints := merged["endpoints"].(map[string]any)

		if userEndpoints, ok := user["endpoints"].(map[string]any); ok {
			for key, value := range userEndpoints {
				mergedEndpoints[key] = value
			}
		}
	}

	userAccessKey, _ := user["access_key"].(string)
	merged["access_key"] = awshelper.ResolveAccessKey(generator.opts, userAccessKey)

	return merged, nil
}

func (generator *Generator) defaultBackendSettings(legacy bool) map[string]any {
	settings := map[string]any{
		"bucket":                      DefaultStateBucket,
		"key":                         DefaultStateKey,
		"region":                      generator.opts.DefaultRegion,
		"secret_key":                  options.DefaultAccessKey,
		"skip_credentials_validation": true,
		"skip_metadata_api_check":     true,
	}

	if legacy {
		for field, service := range legacyEndpointFields {
			settings[field] = generator.resolver.Resolve(service)
		}

		return settings
	}

	settings["endpoints"] = map[string]any{
		"s3":       generator.resolver.Resolve("s3"),
		"iam":      generator.resolver.Resolve("iam"),
		"sso":      generator.resolver.Resolve("sso"),
		"sts":      generator.resolver.Resolve("sts"),
		"dynamodb": generator.resolver.Resolve("dynamodb"),
	}

	return settings
}

// legacyEndpointsRequired reports whether the detected terraform version predates the nested
// endpoints map (1.6). An undetected version counts as modern.
func (generator *Generator) legacyEndpointsRequired() bool {
	v := generator.opts.TerraformVersion
	if v == nil {
		return false
	}

	segments := v.Segments()

	if segments[0] != nestedEndpointsVersionMajor {
		return segments[0] < nestedEndpointsVersionMajor
	}

	return segments[1] < nestedEndpointsVersionMinor
}

func (generator *Generator) terraformVersionString() string {
	if generator.opts.TerraformVersion == nil {
		return "unknown"
	}

	return generator.opts.TerraformVersion.String()
}

// foldLegacyEndpointFields moves legacy flat endpoint fields into the nested endpoints map:
// a legacy field is deleted once its nested equivalent exists, otherwise its value is moved
// under the matching key.
func foldLegacyEndpointFields(settings map[string]any) {
	nested, _ := settings["endpoints"].(map[string]any)

	for field, service := range legacyEndpointFields {
		value, ok := settings[field]
		if !ok {
			continue
		}

		delete(settings, field)

		if nested == nil {
			nested = make(map[string]any)
		}

		if _, exists := nested[service]; !exists {
			nested[service] = value
		}
	}

	if nested != nil {
		settings["endpoints"] = nested
	}
}

// setSortedAttributes writes the settings into the body sorted by attribute name, so the
// output is stable across runs.
func setSortedAttributes(body *hclwrite.Body, settings map[string]any) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		val, err := nativeToCty(settings[key])
		if err != nil {
			return err
		}

		body.SetAttributeValue(key, val)
	}

	return nil
}

// nativeToCty converts plain Go values into cty values. Since the settings can be of arbitrary
// shape without type information, JSON is used as the intermediate representation.
func nativeToCty(native any) (cty.Value, error) {
	jsonBytes, err := json.Marshal(native)
	if err != nil {
		return cty.NilVal, errors.New(err)
	}

	var ctyVal ctyjson.SimpleJSONValue
	if err := ctyVal.UnmarshalJSON(jsonBytes); err != nil {
		return cty.NilVal, errors.New(err)
	}

	return ctyVal.Value, nil
}

func rawTokens(source string) hclwrite.Tokens {
	return hclwrite.Tokens{
		{Type: hclsyntax.TokenIdent, Bytes: []byte(source)},
	}
}
