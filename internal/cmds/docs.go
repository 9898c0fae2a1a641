// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/internal/sitepkg"
	"github.com/spinkit/spin/pkg/platform"
	"github.com/spinkit/spin/pkg/types"
)

var docDirCandidates = []string{"doc", "docs"}

var docsCmd = &command.Command{
	Name: "docs",
	Help: `📖 Build Sphinx documentation

By default, SPHINXOPTS="-W", raising errors on warnings.
To build without raising on warnings:

  SPHINXOPTS="" spin docs

To list all Sphinx targets:

  spin docs targets

To build another Sphinx target:

  spin docs TARGET`,
	Params: []command.Param{
		{Name: "sphinx_target", Kind: command.KindString, Positional: true, Default: "html", Metavar: "SPHINX_TARGET"},
		{Name: "clean", Flags: []string{"--clean"}, Kind: command.KindBool, Help: "Clean previously built docs before building"},
		{Name: "first_build", Flags: []string{"--build/--no-build"}, Kind: command.KindBool, Default: true, Help: "Build project before generating docs"},
		{Name: "sphinx_gallery_plot", Flags: []string{"--plot/--no-plot"}, Kind: command.KindBool, Default: true, Help: "Sphinx gallery: enable/disable plots"},
		{Name: "jobs", Flags: []string{"-j", "--jobs"}, Kind: command.KindString, Default: "auto", Help: "Number of parallel build jobs"},
		buildDirParam,
	},
	Hidden: []command.Param{
		{Name: "clean_dirs", Kind: command.KindStrings},
	},
	Callback: docs,
}

func docs(cc *command.Context, args command.Args) error {
	s := newSession(cc)
	buildDir := args.String("build_dir")

	docDir := findDocDir(s.cfg.Dir)
	if docDir == "" {
		cc.Printf("No documentation folder found; one of doc, docs must exist\n")
		return &runtime.ExitCodeError{Argv: []string{"docs"}, Code: types.ExitFailure}
	}

	target := args.String("sphinx_target")
	clean, firstBuild := args.Bool("clean"), args.Bool("first_build")
	if target == "targets" || target == "help" {
		target, clean, firstBuild = "help", false, false
	}

	if clean {
		dirs := args.Strings("clean_dirs")
		if !args.Has("clean_dirs") {
			dirs = defaultCleanDirs(docDir)
		}
		for _, dir := range dirs {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				cc.Printf("Removing '%s'\n", dir)
				if err := os.RemoveAll(dir); err != nil {
					return err
				}
			}
		}
	}

	if firstBuild {
		if err := s.invokeBuild("building docs", command.Args{"build_dir": buildDir}); err != nil {
			return err
		}
	}

	site, err := s.sitePackages(buildDir)
	if errors.Is(err, sitepkg.ErrNotFound) || errors.Is(err, sitepkg.ErrAmbiguous) {
		cc.Printf("%s build not found; run `spin build` or `spin install` first.\n", s.cfg.ProjectName())
		return &runtime.ExitCodeError{Argv: []string{"docs"}, Code: types.ExitFailure}
	}
	if err != nil {
		return err
	}

	opts, ok := s.lookupEnv("SPHINXOPTS")
	if !ok {
		opts = "-W"
	}
	s.env["SPHINXOPTS"] = sphinxOpts(opts, args.Bool("sphinx_gallery_plot"), args.String("jobs"))
	s.println(exportStyle, "$ export SPHINXOPTS=%s", s.env["SPHINXOPTS"])

	if site != "" {
		s.env["PYTHONPATH"] = site + string(filepath.Separator) + string(os.PathListSeparator) + s.pythonPath()
		s.println(exportStyle, "$ export PYTHONPATH=%s", s.env["PYTHONPATH"])
	}

	_, err = s.run([]string{makeCommand(docDir), target}, runtime.Dir(docDir), runtime.Replace())
	return err
}

func findDocDir(projectDir string) string {
	for _, name := range docDirCandidates {
		dir := filepath.Join(projectDir, name)
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return ""
}

func defaultCleanDirs(docDir string) []string {
	var dirs []string
	for _, prefix := range []string{"", "_"} {
		dirs = append(dirs,
			filepath.Join(docDir, prefix+"build"),
			filepath.Join(docDir, prefix+"source", "api"),
			filepath.Join(docDir, prefix+"source", "auto_examples"),
			filepath.Join(docDir, prefix+"source", "jupyterlite_contents"),
		)
	}
	return dirs
}

func sphinxOpts(base string, plot bool, jobs string) string {
	if !plot {
		base += " -D plot_gallery=0"
	}
	return base + " -j " + jobs
}

func makeCommand(docDir string) string {
	if platform.IsWindows() {
		if _, err := os.Stat(filepath.Join(docDir, "make.bat")); err == nil {
			return "make.bat"
		}
	}
	return "make"
}
