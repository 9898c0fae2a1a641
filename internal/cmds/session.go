// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/config"
	"github.com/spinkit/spin/internal/issue"
	"github.com/spinkit/spin/internal/pyenv"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/sitepkg"
)

// modernPython is the first interpreter with -P (safe sys.path).
const modernPython = ">= 3.11"

// session is the view of the project shared by one built-in invocation.
// Variables exported by one step (PYTHONPATH, SPHINXOPTS) are kept in env and
// passed to every process launched afterwards.
type session struct {
	cc  *command.Context
	cfg *config.Config
	py  *pyenv.Interpreter
	env map[string]string

	version *pyenv.Version
}

func newSession(cc *command.Context) *session {
	return &session{
		cc:  cc,
		cfg: cc.Config,
		py:  pyenv.New(cc.Runner, cc.Config.Python()),
		env: map[string]string{},
	}
}

func (s *session) ctx() context.Context {
	return s.cc.Ctx()
}

func (s *session) println(style lipgloss.Style, format string, a ...any) {
	fmt.Fprintln(s.cc.Stdout, style.Render(fmt.Sprintf(format, a...)))
}

// run launches argv with the session environment.
func (s *session) run(argv []string, opts ...runtime.Option) (*runtime.Result, error) {
	opts = append([]runtime.Option{runtime.Env(s.env)}, opts...)
	return s.cc.Runner.Run(s.ctx(), argv, opts...)
}

func (s *session) lookupEnv(key string) (string, bool) {
	if v, ok := s.env[key]; ok {
		return v, true
	}
	return s.cc.Runner.LookupEnv(key)
}

// pythonPath is the PYTHONPATH launched tools inherit: the value exported
// earlier in this session, or the one spin started with.
func (s *session) pythonPath() string {
	if v, ok := s.env["PYTHONPATH"]; ok {
		return v
	}
	return s.cfg.Env.PythonPath
}

func (s *session) pythonVersion() (pyenv.Version, error) {
	if s.version != nil {
		return *s.version, nil
	}
	v, err := s.py.Version(s.ctx())
	if err != nil {
		return pyenv.Version{}, err
	}
	s.version = &v
	return v, nil
}

func (s *session) hasSafePath() (bool, error) {
	v, err := s.pythonVersion()
	if err != nil {
		return false, err
	}
	return v.Satisfies(modernPython)
}

// pythonCommand returns the interpreter argv running code without the
// current directory on sys.path.
func (s *session) pythonCommand(code string) ([]string, error) {
	safe, err := s.hasSafePath()
	if err != nil {
		return nil, err
	}
	if safe {
		return []string{s.py.Path, "-P", "-c", code}, nil
	}
	return []string{s.py.Path, "-c", "import sys; sys.path.pop(0); " + code}, nil
}

// editableSameSource reports whether the project is installed in editable
// mode from the project directory itself.
func (s *session) editableSameSource() (bool, error) {
	same, _, err := s.py.IsEditableInstallOf(s.ctx(), s.cfg.DistName(), s.cfg.Dir)
	return same, err
}

// invokeBuild runs the registered build command, if any, before purpose.
func (s *session) invokeBuild(purpose string, args command.Args) error {
	build, ok := s.cc.Lookup("build")
	if !ok {
		return nil
	}
	s.println(stepStyle, "Invoking `build` prior to %s:", purpose)
	return s.cc.Invoke(build, args)
}

// sitePackages returns the library directory of the install for buildDir,
// or "" when the project is installed in editable mode from this source.
func (s *session) sitePackages(buildDir string) (string, error) {
	if same, err := s.editableSameSource(); err != nil || same {
		return "", err
	}
	v, err := s.pythonVersion()
	if err != nil {
		return "", err
	}

	root := sitepkg.InstallDir(buildDir)
	site, err := sitepkg.Resolve(root, v)
	switch {
	case errors.Is(err, sitepkg.ErrNotFound):
		return "", issue.NewErrorContext().
			WithOperation("locate installed package").
			WithResource(root).
			WithSuggestion("Run `spin build` (or `spin install`) first").
			WithIssue(issue.SitePackagesNotFoundId).
			Wrap(err).
			BuildError()
	case errors.Is(err, sitepkg.ErrAmbiguous):
		return "", issue.NewErrorContext().
			WithOperation("locate installed package").
			WithResource(root).
			WithSuggestion("Remove stale installs with `spin build --clean`").
			WithIssue(issue.SitePackagesAmbiguousId).
			Wrap(err).
			BuildError()
	case err != nil:
		return "", err
	}
	return site, nil
}

// setPythonPath puts the site-packages directory of buildDir in front of
// PYTHONPATH for every later launch. Editable installs of this source leave
// PYTHONPATH alone.
func (s *session) setPythonPath(buildDir string, quiet bool) (string, error) {
	if dist := s.cfg.DistName(); dist != "" {
		same, path, err := s.py.IsEditableInstallOf(s.ctx(), dist, s.cfg.Dir)
		if err != nil {
			return "", err
		}
		if path != "" {
			if same {
				if !quiet {
					s.println(warnStyle, "Editable install of same source directory detected; not setting PYTHONPATH")
				}
				return "", nil
			}
			// Printed even when quiet: the other install shadows this build.
			s.println(warnStyle, "Warning! Editable install of `%s`, from a different source location, detected.", dist)
			s.println(warnStyle, "Spin commands will pick up that version.")
			s.println(warnStyle, "Try removing the other installation by switching to its source and running `pip uninstall %s`.", dist)
		}
	}

	site, err := s.sitePackages(buildDir)
	if err != nil {
		return "", err
	}

	s.env["PYTHONPATH"] = pyenv.PrependPath(site, s.pythonPath())
	if !quiet {
		s.println(exportStyle, `$ export PYTHONPATH="%s"`, s.env["PYTHONPATH"])
	}
	return site, nil
}
