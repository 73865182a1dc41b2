package codegen

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/mattn/go-isatty"
)

// FileWriter writes the override document into every target directory and removes it again
// after the terraform invocation. It tracks the files it created so a pre-existing file left
// behind by an earlier crash, or created by the user, is never silently overwritten.
type FileWriter struct {
	opts    *options.TflocalOptions
	written []string
}

func NewFileWriter(opts *options.TflocalOptions) *FileWriter {
	return &FileWriter{opts: opts}
}

// WriteAll writes the contents into every override target directory: the working directory
// plus any configured additional module directories.
func (writer *FileWriter) WriteAll(contents []byte) error {
	for _, dir := range writer.opts.OverrideDirs() {
		if err := writer.write(dir, contents); err != nil {
			return err
		}
	}

	return nil
}

func (writer *FileWriter) write(dir string, contents []byte) error {
	targetPath := filepath.Join(dir, writer.opts.ProvidersFile)

	if fileExists(targetPath) && !writer.wroteFile(targetPath) {
		if !writer.opts.DryRun {
			return errors.New(OverrideFileExistsError{Path: targetPath})
		}

		if !confirmOverwrite(writer.opts, targetPath) {
			return errors.New(OverrideFileExistsError{Path: targetPath, DryRun: true})
		}
	}

	if err := os.WriteFile(targetPath, contents, 0644); err != nil {
		return errors.New(err)
	}

	writer.opts.Logger.Debugf("Generated override file %s", targetPath)
	writer.written = append(writer.written, targetPath)

	return nil
}

// RemoveAll deletes every override file this run created. Deletion is best-effort: failures
// are aggregated and reported by the caller as warnings, never as a run failure.
func (writer *FileWriter) RemoveAll() error {
	var removalErrs *multierror.Error

	for _, targetPath := range writer.written {
		if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
			removalErrs = multierror.Append(removalErrs, err)
		}
	}

	writer.written = nil

	return removalErrs.ErrorOrNil()
}

// WrittenFiles returns the override files created so far in this run.
func (writer *FileWriter) WrittenFiles() []string {
	return writer.written
}

func (writer *FileWriter) wroteFile(targetPath string) bool {
	for _, written := range writer.written {
		if written == targetPath {
			return true
		}
	}

	return false
}

// confirmOverwrite interactively asks whether a pre-existing override file may be replaced.
// Only available in dry-run mode on a terminal; everywhere else the answer is no.
func confirmOverwrite(opts *options.TflocalOptions, targetPath string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}

	fmt.Fprintf(opts.ErrWriter, "Override file %s already exists. Overwrite? (y/N) ", targetPath)

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
