// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/sitepkg"
	"github.com/spinkit/spin/pkg/types"
)

var gcovFormats = []string{"html", "xml", "text", "sonarqube"}

// gcovRequirements lists the tools meson needs for each report format.
var gcovRequirements = map[string][]string{
	"html":      {"Gcovr/GenHTML", "lcov"},
	"xml":       {"Gcovr (version 3.3 or higher)"},
	"text":      {"Gcovr (version 3.3 or higher)"},
	"sonarqube": {"Gcovr (version 4.2 or higher)"},
}

var reportLocation = regexp.MustCompile(`file://(.*)`)

var testCmd = &command.Command{
	Name: "test",
	Help: `🔧 Run tests

PYTEST_ARGS are passed through directly to pytest, e.g.:

  spin test -- --pdb

To run tests on a directory or file:

  spin test numpy/linalg
  spin test numpy/linalg/tests/test_linalg.py

To run test modules, functions, classes, or methods:

  spin test -t numpy.random

To run tests that match a given pattern:

  spin test -- -k "geometric"

If python-xdist is installed, you can run tests in parallel:

  spin test -j auto

For more, see ` + "`pytest --help`" + `.`,
	Params: []command.Param{
		{Name: "pytest_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "PYTEST_ARGS"},
		{Name: "n_jobs", Flags: []string{"-j"}, Kind: command.KindString, Default: "1", Metavar: "N_JOBS",
			Help: "Number of parallel jobs for testing. Can be set to `auto` to use all cores."},
		{Name: "tests", Flags: []string{"-t", "--tests"}, Kind: command.KindString, Metavar: "TESTS",
			Help: "Which tests to run. Can be a module, function, class, or method."},
		{Name: "verbose", Flags: []string{"-v", "--verbose"}, Kind: command.KindBool},
		{Name: "coverage", Flags: []string{"-c", "--coverage"}, Kind: command.KindBool,
			Help: "Generate a Python coverage report of executed tests. An HTML copy of the report is written to `build/coverage`."},
		{Name: "gcov", Flags: []string{"--gcov"}, Kind: command.KindBool,
			Help: "Generate a C coverage report in `build/meson-logs/coveragereport`."},
		{Name: "gcov_format", Flags: []string{"--gcov-format"}, Kind: command.KindString, Default: "html", Choices: gcovFormats,
			Help: "Format of the gcov report. Can be one of " + strings.Join(gcovFormats, ", ") + "."},
		buildDirParam,
	},
	Callback: runTests,
}

func runTests(cc *command.Context, args command.Args) error {
	s := newSession(cc)
	buildDir := args.String("build_dir")
	gcov := args.Bool("gcov")

	pkg, err := s.cfg.RequirePackage()
	if err != nil {
		return err
	}

	if gcov {
		same, err := s.editableSameSource()
		if err != nil {
			return err
		}
		if same {
			s.println(warnStyle, "Error: cannot generate coverage report for editable installs")
			return &runtime.ExitCodeError{Argv: []string{"test"}, Code: types.ExitFailure}
		}
	}

	buildArgs := command.Args{"build_dir": buildDir}
	if gcov {
		buildArgs["gcov"] = true
	}
	if err := s.invokeBuild("running tests", buildArgs); err != nil {
		return err
	}

	site, err := s.setPythonPath(buildDir, false)
	if err != nil {
		return err
	}

	// pytest hides import errors raised from conftest.py, so import the
	// package on its own first.
	sanity, err := s.pythonCommand("import " + pkg)
	if err != nil {
		return err
	}
	res, err := s.run(sanity, runtime.MustSucceed(false))
	if err != nil {
		return err
	}
	if !res.Success() {
		cc.Printf("As a sanity check, we tried to import %s.\n", pkg)
		cc.Printf("Stopping. Please investigate the build error.\n")
		return &runtime.ExitCodeError{Argv: sanity, Code: types.ExitFailure}
	}

	pytestArgs := buildPytestArgs(pkg, args.Strings("pytest_args"), args.String("tests"), args.String("n_jobs"), args.Bool("verbose"))

	if args.Bool("coverage") {
		covArgs, err := prepareCoverage(cc, pkg)
		if err != nil {
			return err
		}
		pytestArgs = append(pytestArgs, covArgs...)
	}

	pytest := []string{"pytest"}
	safe, err := s.hasSafePath()
	if err != nil {
		return err
	}
	if safe {
		pytest = []string{s.py.Path, "-P", "-m", "pytest"}
	}

	if err := os.MkdirAll(sitepkg.InstallDir(buildDir), 0o755); err != nil {
		return err
	}

	var opts []runtime.Option
	if site != "" {
		opts = append(opts, runtime.Dir(site))
	}
	if _, err := s.run(slices.Concat(pytest, pytestArgs), opts...); err != nil {
		return err
	}

	if gcov {
		return s.gcovReport(buildDir, args.String("gcov_format"))
	}
	return nil
}

// buildPytestArgs assembles the pytest command line. A single positional
// argument without -t is taken as the tests to run.
func buildPytestArgs(pkg string, extra []string, tests, jobs string, verbose bool) []string {
	extra = slices.Clone(extra)
	if len(extra) == 1 && tests == "" {
		tests, extra = extra[0], nil
	}

	switch {
	case len(extra) == 0 && tests == "":
		extra = []string{"--pyargs", pkg}
	case tests != "":
		if strings.ContainsRune(tests, filepath.Separator) || strings.Contains(tests, "/") {
			extra = append(extra, tests)
		} else {
			extra = append(extra, "--pyargs", tests)
		}
	}

	if jobs != "1" && !slices.Contains(extra, "-n") {
		extra = append([]string{"-n", jobs}, extra...)
	}
	if !slices.ContainsFunc(extra, func(a string) bool { return strings.Contains(a, "--import-mode") }) {
		extra = append([]string{"--import-mode=importlib"}, extra...)
	}
	if verbose {
		extra = append([]string{"-v"}, extra...)
	}
	return extra
}

func prepareCoverage(cc *command.Context, pkg string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(cwd, "build", "coverage") + string(filepath.Separator)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		cc.Printf("Removing `%s`\n", dir)
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return []string{"--cov-report=term", "--cov-report=html:" + dir, "--cov=" + pkg}, nil
}

// GcovError reports a coverage report that cannot be produced.
type GcovError struct {
	Msg string
}

func (e *GcovError) Error() string { return e.Msg }

// checkGcovArtifacts verifies that buildDir holds a coverage-enabled build.
func checkGcovArtifacts(buildDir string) error {
	if _, err := os.Stat(buildDir); err != nil {
		return &GcovError{Msg: fmt.Sprintf("`%s` folder not found, cannot generate coverage reports. "+
			"Generate coverage artefacts by running `spin test --gcov`", buildDir)}
	}
	notes, err := doublestar.Glob(os.DirFS(buildDir), "**/*.gcno")
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return &GcovError{Msg: "Debug build not found, cannot generate coverage reports.\n\n" +
			"Please rebuild using `spin build --clean --gcov` first."}
	}
	return nil
}

func (s *session) gcovReport(buildDir, format string) error {
	s.println(noticeStyle, "Verifying gcov dependencies...")
	if err := checkGcovArtifacts(buildDir); err != nil {
		return err
	}

	target := "coverage-" + strings.ToLower(format)
	targets, err := s.run([]string{"ninja", "-C", buildDir, "-t", "targets", "all"}, runtime.Capture())
	if err != nil {
		return err
	}
	if !strings.Contains(targets.Stdout, target) {
		return &GcovError{Msg: fmt.Sprintf("%s is not supported... Ensure the following are installed: %s and rerun `spin test --gcov`",
			target, strings.Join(gcovRequirements[format], ", "))}
	}

	s.println(noticeStyle, "Generating %s coverage report...", format)
	res, err := s.run([]string{"ninja", "-C", buildDir, target}, runtime.Capture())
	if err != nil {
		return err
	}
	if m := reportLocation.FindStringSubmatch(res.Output); m != nil {
		s.println(stepStyle, "Coverage report generated successfully and written to %s", noticeStyle.Render(m[1]))
	}
	return nil
}
