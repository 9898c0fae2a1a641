// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/config"
	"github.com/spinkit/spin/internal/issue"
	"github.com/spinkit/spin/internal/resolve"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/pkg/types"
)

type (
	appOptions struct {
		// Dir is the project directory. Empty means the working directory.
		Dir     string
		Stdout  io.Writer
		Stderr  io.Writer
		Verbose bool
		// Provider loads the configuration. Nil uses the filesystem.
		Provider config.Provider
		// Runner launches processes. Nil creates one writing to Stdout and
		// Stderr.
		Runner *runtime.Runner
	}

	// app holds everything built once per process: the configuration, the
	// registry and the execution context handed to every callback.
	app struct {
		opts     appOptions
		logger   *log.Logger
		cfg      *config.Config
		registry *command.Registry
		cc       *command.Context
		exitCode types.ExitCode
	}
)

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "spin"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newApp loads the configuration. Files that could not be parsed are
// reported and skipped.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	logger := newLogger(opts.Stderr, opts.Verbose)
	provider := opts.Provider
	if provider == nil {
		provider = config.NewProvider()
	}

	cfg, err := provider.Load(ctx, config.LoadOptions{Dir: opts.Dir})
	var nf *config.NotFoundError
	switch {
	case errors.As(err, &nf):
		reportParseErrors(opts.Stderr, logger, nf.Skipped)
		return nil, err
	case err != nil:
		return nil, err
	}
	reportParseErrors(opts.Stderr, logger, cfg.Skipped)
	logger.Debug("loaded configuration", "files", cfg.Files)

	runner := opts.Runner
	if runner == nil {
		runner = runtime.NewRunner(opts.Stdout, opts.Stderr)
	}

	a := &app{
		opts:     opts,
		logger:   logger,
		cfg:      cfg,
		registry: command.NewRegistry(),
	}
	a.cc = &command.Context{
		Context:  ctx,
		Config:   cfg,
		Registry: a.registry,
		Runner:   runner,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
		Logger:   logger,
		Version:  Version,
	}
	return a, nil
}

func reportParseErrors(w io.Writer, logger *log.Logger, skipped []*config.ParseError) {
	for _, pe := range skipped {
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("Error: cannot parse [%s]", pe.File)))
		logger.Debug("parse error", "file", pe.File, "err", pe.Err)
	}
}

func (a *app) validate() error {
	return a.cfg.Validate()
}

// resolve registers every configured command. Skippable failures are
// printed as warnings.
func (a *app) resolve(ctx context.Context) error {
	sections, err := a.cfg.Sections()
	if err != nil {
		return err
	}
	r := resolve.New(resolve.Options{
		Dir:    a.cfg.Dir,
		Kwargs: a.cfg.Kwargs,
		Warn: func(err error) {
			fmt.Fprintln(a.opts.Stderr, WarningStyle.Render("!! "+err.Error()))
		},
		Stdout: a.opts.Stdout,
		Stderr: a.opts.Stderr,
		Logger: a.logger,
	})
	if err := r.ResolveAll(ctx, sections, a.registry); err != nil {
		var loadErr *resolve.LoadError
		if errors.As(err, &loadErr) {
			return issue.NewErrorContext().
				WithOperation("load custom command").
				WithResource(loadErr.Ref).
				WithIssue(issue.CustomCommandLoadFailedId).
				Wrap(err).
				BuildError()
		}
		return err
	}
	a.logger.Debug("registered commands", "count", a.registry.Len())
	return nil
}

func (a *app) rootCommand() *cobra.Command {
	project := a.cfg.ProjectName()
	root := &cobra.Command{
		Use:          "spin",
		Short:        "Developer tool for " + project,
		Long:         rootHelp(project),
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	addSections(root, a.cc, a.registry, a.finish)
	return root
}

// finish reports the outcome of a command. Errors handled here are printed
// in spin's own format and recorded as the exit code; anything else goes
// back to cobra.
func (a *app) finish(err error) error {
	if err == nil {
		return nil
	}

	var (
		panicErr *PanicError
		ae       *issue.ActionableError
		notFound *runtime.ExecutableNotFoundError
	)
	switch {
	case isQuiet(err):
		a.logger.Debug("command failed", "err", err)
	case errors.As(err, &panicErr):
		reportPanic(a.opts.Stderr, panicErr, a.cfg.ProjectName())
	case errors.As(err, &ae):
		reportError(a.opts.Stderr, err, a.opts.Verbose)
	case errors.As(err, &notFound):
		reportError(a.opts.Stderr, issue.NewErrorContext().
			WithOperation("run command").
			WithResource(notFound.Name).
			WithIssue(issue.ExecutableNotFoundId).
			Wrap(err).
			BuildError(), a.opts.Verbose)
	default:
		return err
	}
	a.exitCode = exitCodeOf(err)
	return nil
}

func reportError(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	renderIssue(w, err)
}

// reportStartupError prints a failure to load the configuration or resolve
// the commands.
func reportStartupError(w io.Writer, err error, verbose bool) {
	var nf *config.NotFoundError
	if !errors.As(err, &nf) {
		reportError(w, err, verbose)
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render(nf.Error()))
	if nf.Hint == "" {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Are you running `spin` from the correct directory? Perhaps you'd like to")
	fmt.Fprintln(w)
	fmt.Fprintln(w, CmdStyle.Render(" $ cd "+nf.Hint))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "and try again.")
}
