// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the spin command-line entry point: configuration
// loading, command resolution and the translation of registered commands
// into a cobra command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	// Built-in commands register their modules on import.
	_ "github.com/spinkit/spin/internal/cmds"
	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/issue"
	"github.com/spinkit/spin/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

func init() {
	// Sections and the commands in them keep their configured order.
	cobra.EnableCommandSorting = false
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs spin with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(int(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)))
}

// run is Execute without the process globals.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) types.ExitCode {
	argv, verbose := extractVerbose(argv)
	if slices.Equal(argv, []string{"help"}) {
		argv = []string{"--help"}
	}

	a, err := newApp(ctx, appOptions{Stdout: stdout, Stderr: stderr, Verbose: verbose})
	if err != nil {
		reportStartupError(stderr, err, verbose)
		return exitCodeOf(err)
	}

	if slices.Equal(argv, []string{"--version"}) {
		fmt.Fprintf(stdout, "spin %s\n", Version)
		return types.ExitSuccess
	}

	if err := a.validate(); err != nil {
		reportStartupError(stderr, err, verbose)
		return types.ExitFailure
	}
	if err := a.resolve(ctx); err != nil {
		reportStartupError(stderr, err, verbose)
		return types.ExitFailure
	}

	root := a.rootCommand()
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		return exitCodeOf(err)
	}
	return a.exitCode
}

// extractVerbose removes --verbose from the global options preceding the
// command name. Commands may declare their own --verbose.
func extractVerbose(argv []string) ([]string, bool) {
	out := make([]string, 0, len(argv))
	verbose := false
	for i, arg := range argv {
		if arg == "" || arg[0] != '-' || arg == "--" {
			out = append(out, argv[i:]...)
			return out, verbose
		}
		if arg == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, arg)
	}
	return out, verbose
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog entry linked to err, if any.
func renderIssue(w io.Writer, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	if rendered, renderErr := entry.Render("dark"); renderErr == nil {
		fmt.Fprint(w, rendered)
	}
}

// rootHelp is the description shown by `spin --help`.
func rootHelp(project string) string {
	return TitleStyle.Render("spin") + SubtitleStyle.Render(" - Developer tool for "+project)
}

// groupTitle is the help heading of a section.
func groupTitle(section string) string {
	return section + ":"
}

// addSections adds one cobra group per registry section, in order, and the
// translated commands under it.
func addSections(root *cobra.Command, cc *command.Context, reg *command.Registry, finish func(error) error) {
	for _, section := range reg.Sections() {
		root.AddGroup(&cobra.Group{ID: section.Name, Title: groupTitle(section.Name)})
		for _, cmd := range section.Commands {
			root.AddCommand(buildCommand(cc, cmd, section.Name, finish))
		}
	}
}
