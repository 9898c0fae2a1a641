// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"slices"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
)

var installCmd = &command.Command{
	Name: "install",
	Help: `💽 Build and install package using pip.

By default, the package is installed in editable mode.

Arguments after ` + "`--`" + ` are passed through to pip, e.g.:

  spin install -- --no-clean

would translate to:

  pip install . --no-build-isolation --editable --no-clean`,
	Params: []command.Param{
		{Name: "verbose", Flags: []string{"-v", "--verbose"}, Kind: command.KindBool, Help: "Print detailed build and installation output"},
		{Name: "editable", Flags: []string{"--editable/--no-editable"}, Kind: command.KindBool, Default: true, Help: "Install in editable mode"},
		{Name: "pip_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "PIP_ARGS"},
	},
	Callback: install,
}

func install(cc *command.Context, args command.Args) error {
	argv := pipInstallArgs(args.Strings("pip_args"), args.Bool("verbose"), args.Bool("editable"))
	_, err := cc.Runner.Run(cc.Ctx(), argv, runtime.Replace())
	return err
}

func pipInstallArgs(extra []string, verbose, editable bool) []string {
	argv := []string{"pip", "install"}
	if verbose {
		argv = append(argv, "-v")
	}
	argv = append(argv, extra...)
	argv = append(argv, "--no-build-isolation")
	if editable {
		argv = append(argv, "--editable")
	}
	return append(argv, ".")
}

var sdistCmd = &command.Command{
	Name: "sdist",
	Help: `📦 Build a source distribution in ` + "`dist/`" + `

Extra arguments are passed to ` + "`pyproject-build`" + `, e.g.

  spin sdist -- -x -n`,
	Params: []command.Param{
		{Name: "pyproject_build_args", Kind: command.KindStrings, Positional: true, Variadic: true},
	},
	Callback: sdist,
}

func sdist(cc *command.Context, args command.Args) error {
	argv := slices.Concat([]string{"pyproject-build", ".", "--sdist"}, args.Strings("pyproject_build_args"))
	_, err := cc.Runner.Run(cc.Ctx(), argv)
	return err
}
