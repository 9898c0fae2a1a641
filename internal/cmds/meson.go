// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/sitepkg"
	"github.com/spinkit/spin/pkg/platform"
)

// SetupError is returned when the initial meson setup of a build directory
// fails.
type SetupError struct {
	BuildDir string
}

func (e *SetupError) Error() string {
	return "Meson configuration failed; please try `spin build` again with the `--clean` flag."
}

var buildDirParam = command.Param{
	Name:    "build_dir",
	Flags:   []string{"-C", "--build-dir"},
	Kind:    command.KindString,
	Default: "build",
	EnvVar:  "SPIN_BUILD_DIR",
	Help:    "Meson build directory; package is installed into './{build-dir}-install'.",
}

var buildCmd = &command.Command{
	Name: "build",
	Help: `🔧 Build package with Meson/ninja

The package is installed to ` + "`build-install`" + ` (unless a different
build directory is specified with ` + "`-C`" + `).

MESON_ARGS are passed through e.g.:

  spin build -- -Dpkg_config_path=/lib64/pkgconfig

By default meson-python does release builds. To be able to use a debugger,
tell meson to build in debug mode:

  spin build -- -Dbuildtype=debug

Build into a different build/build-install directory via the
` + "`-C/--build-dir`" + ` flag:

  spin build -C build-for-feature-x`,
	Params: []command.Param{
		{Name: "jobs", Flags: []string{"-j", "--jobs"}, Kind: command.KindInt, Help: "Number of parallel tasks to launch"},
		{Name: "clean", Flags: []string{"--clean"}, Kind: command.KindBool, Help: "Clean build directory before build"},
		{Name: "verbose", Flags: []string{"-v", "--verbose"}, Kind: command.KindBool, Help: "Print detailed build and installation output"},
		{Name: "gcov", Flags: []string{"--gcov"}, Kind: command.KindBool, Help: "Enable C code coverage using `gcov`. Use `spin test --gcov` to generate reports."},
		{Name: "prefix", Flags: []string{"--prefix"}, Kind: command.KindString, Default: defaultPrefix(), Help: "The build prefix, passed directly to meson."},
		{Name: "meson_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "MESON_ARGS"},
		buildDirParam,
	},
	Hidden: []command.Param{
		{Name: "quiet", Kind: command.KindBool, Default: false},
	},
	Callback: build,
}

func defaultPrefix() string {
	if platform.IsWindows() {
		return "C:/"
	}
	return "/usr"
}

func build(cc *command.Context, args command.Args) error {
	s := newSession(cc)
	buildDir := args.String("build_dir")
	installDir := sitepkg.InstallDir(buildDir)
	quiet := args.Bool("quiet")

	same, err := s.editableSameSource()
	if err != nil {
		return err
	}
	if same {
		if !quiet {
			s.println(warnStyle, "Editable install of same source detected; skipping build")
		}
		return nil
	}

	mesonArgs := args.Strings("meson_args")
	if args.Bool("gcov") {
		mesonArgs = append(mesonArgs, "-Db_coverage=true")
	}
	meson := s.cfg.MesonCLI()
	setup := setupArgs(meson, buildDir, args.String("prefix"), mesonArgs)

	if args.Bool("clean") {
		for _, dir := range []string{buildDir, installDir} {
			cc.Printf("Removing `%s`\n", dir)
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}
	}

	output := func(show bool) runtime.Option {
		if show {
			return runtime.Echo(true)
		}
		return runtime.Capture()
	}

	configured := configuredMesonVersion(buildDir)
	if _, statErr := os.Stat(buildDir); statErr != nil || configured == "" {
		res, err := s.run(setup, runtime.MustSucceed(false), output(!quiet))
		if err != nil {
			return err
		}
		if !res.Success() {
			return &SetupError{BuildDir: buildDir}
		}
	} else if !sameVersion(s.mesonVersion(meson), configured) || (args.Bool("gcov") && !coverageConfigured(buildDir)) {
		if _, err := s.run(append(setup, "--reconfigure"), output(!quiet)); err != nil {
			return err
		}
	}

	if _, err := s.run(compileArgs(meson, buildDir, args.Bool("verbose"), args.Int("jobs")), output(!quiet)); err != nil {
		return err
	}

	destdir, err := installDestDir(buildDir, installDir)
	if err != nil {
		return err
	}
	install := slices.Concat(meson, []string{"install", "--only-changed", "-C", buildDir, "--destdir", destdir})
	_, err = s.run(install, output(!quiet && args.Bool("verbose")))
	return err
}

func setupArgs(meson []string, buildDir, prefix string, mesonArgs []string) []string {
	return slices.Concat(meson, []string{"setup", buildDir, "--prefix=" + prefix}, mesonArgs)
}

func compileArgs(meson []string, buildDir string, verbose bool, jobs int) []string {
	argv := slices.Concat(meson, []string{"compile"})
	if verbose {
		argv = append(argv, "-v")
	}
	if jobs > 0 {
		argv = append(argv, "-j", strconv.Itoa(jobs))
	}
	return append(argv, "-C", buildDir)
}

// installDestDir returns the meson --destdir for installDir. Relative
// destinations are resolved by meson against the build directory.
func installDestDir(buildDir, installDir string) (string, error) {
	if filepath.IsAbs(installDir) {
		return installDir, nil
	}
	absBuild, err := filepath.Abs(buildDir)
	if err != nil {
		return "", err
	}
	absInstall, err := filepath.Abs(installDir)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absBuild, absInstall)
}

// mesonVersion returns the output of `meson --version`, or "" when meson
// cannot be run.
func (s *session) mesonVersion(meson []string) string {
	res, err := s.run(append(slices.Clone(meson), "--version"), runtime.Capture(), runtime.Echo(false))
	if err != nil {
		return ""
	}
	return res.LastLine()
}

// configuredMesonVersion reads the meson version a build directory was set
// up with. It returns "" for an unconfigured directory.
func configuredMesonVersion(buildDir string) string {
	var info struct {
		MesonVersion struct {
			Full string `json:"full"`
		} `json:"meson_version"`
	}
	data, err := os.ReadFile(filepath.Join(buildDir, "meson-info", "meson-info.json"))
	if err != nil || json.Unmarshal(data, &info) != nil {
		return ""
	}
	return info.MesonVersion.Full
}

// coverageConfigured reports whether b_coverage is enabled in buildDir.
func coverageConfigured(buildDir string) bool {
	var options []struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	data, err := os.ReadFile(filepath.Join(buildDir, "meson-info", "intro-buildoptions.json"))
	if err != nil || json.Unmarshal(data, &options) != nil {
		return false
	}
	for _, o := range options {
		if o.Name == "b_coverage" && o.Value == true {
			return true
		}
	}
	return false
}

// sameVersion compares two meson versions, falling back to string equality
// for versions semver cannot parse.
func sameVersion(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}
