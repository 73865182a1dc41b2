package cli

import (
	"path/filepath"

	"github.com/localstack/tflocal/codegen"
	"github.com/localstack/tflocal/config"
	"github.com/localstack/tflocal/endpoints"
	"github.com/localstack/tflocal/internal/errors"
	"github.com/localstack/tflocal/options"
	"github.com/localstack/tflocal/remote"
	"github.com/localstack/tflocal/shell"
)

// Run is the real entrypoint. It decides whether the invocation needs the
// LocalStack override at all, synthesizes it if so, and hands control to the
// wrapped tool.
func Run(opts *options.TflocalOptions, args []string) error {
	info := ParseArgs(args)

	if info.ChdirDir != "" {
		workingDir := info.ChdirDir
		if !filepath.IsAbs(workingDir) {
			workingDir = filepath.Join(opts.WorkingDir, workingDir)
		}

		workingDir, err := filepath.Abs(workingDir)
		if err != nil {
			return errors.New(err)
		}
		opts.WorkingDir = workingDir
	}

	if info.VersionQuery {
		printWrapperVersion(opts)
	}

	if info.Command == "" || opts.IsUnproxiedCommand(info.Command) {
		opts.Logger.Debugf("Command %q does not talk to AWS, running %s directly", info.Command, opts.TerraformPath)
		return runWrappedTool(opts, args)
	}

	return runProxied(opts, args)
}

func runProxied(opts *options.TflocalOptions, args []string) error {
	if err := PopulateVersions(opts); err != nil {
		return err
	}

	resolver := endpoints.NewResolver(opts)
	generator := codegen.NewGenerator(opts, resolver)

	discovery, err := config.ParseDirectory(opts.Logger, opts.WorkingDir, opts.ProvidersFile)
	if err != nil {
		return err
	}

	document, err := generator.Document(discovery)
	if err != nil {
		return err
	}

	writer := codegen.NewFileWriter(opts)
	if err := writer.WriteAll(document); err != nil {
		// A partial write must not strand override files in the directories already
		// covered, or the next run trips over our own leftovers.
		removeOverrideFiles(opts, writer)
		return err
	}

	if opts.DryRun {
		for _, path := range writer.WrittenFiles() {
			opts.Logger.Infof("Dry run: wrote override file %s, not invoking %s", path, opts.TerraformPath)
		}
		return nil
	}

	if discovery.Backend != nil {
		if err := bootstrapBackend(opts, resolver, generator, discovery); err != nil {
			removeOverrideFiles(opts, writer)
			return err
		}
	}

	if opts.UseExec {
		// The exec path replaces this process, so the override files stay on
		// disk for the lifetime of the wrapped tool and beyond.
		return shell.ExecTerraformCommand(opts, args...)
	}

	defer removeOverrideFiles(opts, writer)

	return runWrappedTool(opts, args)
}

// removeOverrideFiles is best-effort cleanup: failures are warnings, never run failures.
func removeOverrideFiles(opts *options.TflocalOptions, writer *codegen.FileWriter) {
	if err := writer.RemoveAll(); err != nil {
		opts.Logger.Warnf("Unable to remove override files: %s", err)
	}
}

func runWrappedTool(opts *options.TflocalOptions, args []string) error {
	if opts.UseExec {
		return shell.ExecTerraformCommand(opts, args...)
	}
	return shell.RunTerraformCommand(opts, args...)
}

// bootstrapBackend makes sure the S3 bucket and the optional DynamoDB lock
// table behind the state backend exist before terraform first touches them.
func bootstrapBackend(opts *options.TflocalOptions, resolver *endpoints.Resolver, generator *codegen.Generator, discovery *config.Discovery) error {
	settings, err := generator.MergedBackend(discovery.Backend)
	if err != nil {
		return err
	}

	backendConfig, err := remote.DecodeBackendConfig(settings)
	if err != nil {
		return err
	}

	client, err := remote.NewClient(opts, resolver, backendConfig.Region)
	if err != nil {
		return err
	}

	return client.BootstrapBackend(backendConfig)
}
