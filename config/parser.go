package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/localstack/tflocal/internal/errors"
)

// File is a single parsed terraform configuration file.
type File struct {
	// Filename is the base name of the file within the scanned directory.
	Filename string

	// Content is the raw file content, kept so expression source text can be sliced out
	// for interpolation passthrough.
	Content []byte

	body *hclsyntax.Body
}

// parseFile parses the given file as native HCL syntax. The HCL parser and especially cty
// conversions can panic on malformed input, so panics are recovered and converted to errors.
func parseFile(path, filename string) (file *File, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New(PanicWhileParsingError{RecoveredValue: recovered, ConfigFile: filename})
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}

	hclFile, diags := hclparse.NewParser().ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, errors.New(diags)
	}

	body, ok := hclFile.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Errorf("unexpected body type in %s", filename)
	}

	return &File{Filename: filename, Content: content, body: body}, nil
}

// PanicWhileParsingError is returned when the underlying HCL machinery panics on a file.
type PanicWhileParsingError struct {
	RecoveredValue any
	ConfigFile     string
}

func (err PanicWhileParsingError) Error() string {
	return fmt.Sprintf("Recovered panic while parsing '%s'. Error: %v", err.ConfigFile, err.RecoveredValue)
}

// exprSource returns the raw source text of the given expression within the file.
func (file *File) exprSource(expr hclsyntax.Expression) string {
	rng := expr.Range()
	if rng.Start.Byte >= len(file.Content) || rng.End.Byte > len(file.Content) {
		return ""
	}

	return string(file.Content[rng.Start.Byte:rng.End.Byte])
}
