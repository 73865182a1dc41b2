// Package config reads the terraform configuration files in a working directory and discovers
// the blocks tflocal needs to override: aws provider declarations, the s3 backend, and
// terraform_remote_state data sources.
//
// Parsing is best-effort per file: a file that fails to parse is logged as a warning and its
// contents are excluded from discovery, without aborting the run. Extracted scalar fields that
// arrive as single-element lists (an artifact of some configuration toolchains) are unwrapped
// to scalars as part of this package's contract, so downstream code never branches on shape.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const (
	awsProviderName   = "aws"
	s3BackendType     = "s3"
	remoteStateSource = "terraform_remote_state"
)

// ProviderAlias is one declared instance of the aws provider block.
type ProviderAlias struct {
	// Alias is empty for the default (unaliased) provider.
	Alias     string
	Region    string
	AccessKey string
}

// Backend holds the user-supplied settings of the discovered s3 backend block.
type Backend struct {
	// Filename names the file the backend block was found in.
	Filename string

	// Settings maps attribute names to plain Go values (string, bool, float64, []any,
	// map[string]any).
	Settings map[string]any
}

// RemoteState is a terraform_remote_state data source backed by s3.
type RemoteState struct {
	Name     string
	Settings map[string]any

	// Workspace is the workspace attribute value: a plain string for literals, or the raw
	// expression source when the attribute is an interpolation.
	Workspace string

	// WorkspaceIsExpr marks Workspace as raw expression source to be passed through.
	WorkspaceIsExpr bool
}

// Discovery is the result of scanning a working directory.
type Discovery struct {
	// Providers are the aws provider declarations, in file-then-declaration order.
	Providers []ProviderAlias

	// Backend is the first s3 backend block found across files, or nil.
	Backend *Backend

	// RemoteStates are all s3-backed terraform_remote_state data sources.
	RemoteStates []RemoteState
}

// ParseDirectory scans dir (non-recursive) for *.tf files, excluding the override file itself,
// and extracts provider, backend, and remote-state declarations. Files are visited in
// lexicographic filename order so backend discovery is deterministic. A file that fails to
// parse or extract is skipped with a warning.
func ParseDirectory(logger *logrus.Entry, dir, overrideFilename string) (*Discovery, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err)
	}

	var filenames []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".tf") || name == overrideFilename {
			continue
		}

		filenames = append(filenames, name)
	}

	sort.Strings(filenames)

	discovery := &Discovery{}

	for _, filename := range filenames {
		file, err := parseFile(filepath.Join(dir, filename), filename)
		if err != nil {
			logger.Warnf("Unable to parse %s, skipping file: %v", filename, err)
			continue
		}

		if err := discovery.collect(file); err != nil {
			logger.Warnf("Unable to extract configuration from %s, skipping file: %v", filename, err)
		}
	}

	return discovery, nil
}

func (discovery *Discovery) collect(file *File) (err error) {
	defer errors.Recover(func(cause error) {
		err = cause
	})

	for _, block := range file.body.Blocks {
		switch {
		case block.Type == "provider" && len(block.Labels) == 1 && block.Labels[0] == awsProviderName:
			discovery.Providers = append(discovery.Providers, extractProvider(block))

		case block.Type == "terraform" && discovery.Backend == nil:
			if backend := extractBackend(file, block); backend != nil {
				discovery.Backend = backend
			}

		case block.Type == "data" && len(block.Labels) == 2 && block.Labels[0] == remoteStateSource:
			if remoteState := extractRemoteState(file, block); remoteState != nil {
				discovery.RemoteStates = append(discovery.RemoteStates, *remoteState)
			}
		}
	}

	return err
}

func extractProvider(block *hclsyntax.Block) ProviderAlias {
	return ProviderAlias{
		Alias:     attrString(block.Body, "alias"),
		Region:    attrString(block.Body, "region"),
		AccessKey: attrString(block.Body, "access_key"),
	}
}

func extractBackend(file *File, terraformBlock *hclsyntax.Block) *Backend {
	for _, block := range terraformBlock.Body.Blocks {
		if block.Type != "backend" || len(block.Labels) != 1 || block.Labels[0] != s3BackendType {
			continue
		}

		return &Backend{
			Filename: file.Filename,
			Settings: attrSettings(block.Body),
		}
	}

	return nil
}

func extractRemoteState(file *File, block *hclsyntax.Block) *RemoteState {
	if attrString(block.Body, "backend") != s3BackendType {
		return nil
	}

	remoteState := &RemoteState{
		Name: block.Labels[1],
	}

	if configAttr, ok := block.Body.Attributes["config"]; ok {
		if val, err := configAttr.Expr.Value(nil); err == nil && val.Type().IsObjectType() {
			remoteState.Settings = NormalizeSettings(ctyToNative(val))
		}
	}

	if remoteState.Settings == nil {
		remoteState.Settings = map[string]any{}
	}

	if workspaceAttr, ok := block.Body.Attributes["workspace"]; ok {
		if val, err := workspaceAttr.Expr.Value(nil); err == nil && val.IsKnown() && val.Type() == cty.String {
			remoteState.Workspace = val.AsString()
		} else {
			// Interpolations (var.*, local.*, terraform.workspace) cannot be evaluated
			// here. Keep the source text and pass it through verbatim.
			remoteState.Workspace = file.exprSource(workspaceAttr.Expr)
			remoteState.WorkspaceIsExpr = true
		}
	}

	return remoteState
}

// attrSettings evaluates every attribute of the body into plain Go values, skipping
// attributes whose expressions cannot be evaluated without context.
func attrSettings(body *hclsyntax.Body) map[string]any {
	settings := make(map[string]any)

	for name, attr := range body.Attributes {
		val, err := attr.Expr.Value(nil)
		if err != nil || !val.IsWhollyKnown() {
			continue
		}

		settings[name] = ctyToNative(val)
	}

	return NormalizeSettings(settings)
}

func attrString(body *hclsyntax.Body, name string) string {
	attr, ok := body.Attributes[name]
	if !ok {
		return ""
	}

	val, err := attr.Expr.Value(nil)
	if err != nil || !val.IsWhollyKnown() {
		return ""
	}

	str, ok := UnwrapScalar(ctyToNative(val)).(string)
	if !ok {
		return ""
	}

	return str
}

// ctyToNative converts a cty value into plain Go values using JSON as the intermediate
// representation, since the settings can be of arbitrary shape.
func ctyToNative(val cty.Value) any {
	jsonBytes, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil
	}

	var native any
	if err := json.Unmarshal(jsonBytes, &native); err != nil {
		return nil
	}

	return native
}

// UnwrapScalar unwraps a single-element list into its element. Some parsers represent scalar
// attributes as singleton lists; normalizing here keeps every downstream consumer shape-free.
func UnwrapScalar(val any) any {
	if list, ok := val.([]any); ok && len(list) == 1 {
		return list[0]
	}

	return val
}

// NormalizeSettings applies UnwrapScalar to every top-level value of the settings map.
func NormalizeSettings(val any) map[string]any {
	settings, ok := val.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	for key, value := range settings {
		settings[key] = UnwrapScalar(value)
	}

	return settings
}
