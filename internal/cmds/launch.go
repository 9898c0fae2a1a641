// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/pkg/types"
)

var (
	ipythonCmd = &command.Command{
		Name: "ipython",
		Help: `💻 Launch IPython shell with PYTHONPATH set

IPYTHON_ARGS are passed through directly to IPython, e.g.:

  spin ipython -- -i myscript.py`,
		Params: []command.Param{
			{Name: "ipython_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "IPYTHON_ARGS"},
			buildDirParam,
		},
		Callback: ipython,
	}

	pythonCmd = &command.Command{
		Name: "python",
		Help: `🐍 Launch Python shell with PYTHONPATH set

PYTHON_ARGS are passed through directly to Python, e.g.:

  spin python -- -c 'import sys; print(sys.path)'`,
		Params: []command.Param{
			{Name: "python_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "PYTHON_ARGS"},
			buildDirParam,
		},
		Callback: python,
	}

	shellCmd = &command.Command{
		Name: "shell",
		Help: `💻 Launch shell with PYTHONPATH set

SHELL_ARGS are passed through directly to the shell, e.g.:

  spin shell -- -c 'echo $PYTHONPATH'

Ensure that your shell init file (e.g., ~/.zshrc) does not override
the PYTHONPATH.`,
		Params: []command.Param{
			{Name: "shell_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "SHELL_ARGS"},
			buildDirParam,
		},
		Callback: shell,
	}

	runCmd = &command.Command{
		Name: "run",
		Help: `🏁 Run a shell command with PYTHONPATH set

  spin run make
  spin run 'echo $PYTHONPATH'
  spin run python -c 'import sys; del sys.path[0]; import mypkg'

If you'd like to expand shell variables, like ` + "`$PYTHONPATH`" + ` in the example
above, you need to provide a single, quoted command to ` + "`run`" + `:

  spin run 'echo $SHELL && echo $PWD'`,
		Params: []command.Param{
			buildDirParam,
			{Name: "args", Kind: command.KindStrings, Positional: true, Variadic: true, Required: true, Metavar: "ARGS"},
		},
		AllowExtraArgs: true,
		Callback:       run,
	}

	gdbCmd = &command.Command{
		Name: "gdb",
		Help: `👾 Execute code through GDB

  spin gdb -c 'import numpy as np; print(np.__version__)'

Or pass arguments to gdb:

  spin gdb -c 'import numpy as np; print(np.__version__)' -- --fullname

Or run another program, the way you normally would with gdb:

  spin gdb ls
  spin gdb -- --args ls -al

You can also run Python programs:

  spin gdb my_tests.py
  spin gdb -- my_tests.py --mytest-flag`,
		Params: []command.Param{
			{Name: "code", Flags: []string{"-c", "--code"}, Kind: command.KindString, Help: "Python program passed in as a string"},
			{Name: "gdb_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "GDB_ARGS"},
			buildDirParam,
		},
		Callback: gdb,
	}

	lldbCmd = &command.Command{
		Name: "lldb",
		Help: `👾 Execute code through LLDB

  spin lldb -c 'import numpy as np; print(np.__version__)'

Or run another program, the way you normally would with LLDB:

  spin lldb -- ls -al

You can also run Python programs:

  spin lldb -- my_tests.py
  spin lldb -- my_tests.py --mytest-flag

And specify LLDB-specific flags:

  spin lldb -- --arch x86_64 -- ls -al
  spin lldb -c 'import numpy as np; print(np.__version__)' -- --arch x86_64`,
		Params: []command.Param{
			{Name: "code", Flags: []string{"-c", "--code"}, Kind: command.KindString, Help: "Python program passed in as a string"},
			{Name: "lldb_args", Kind: command.KindStrings, Positional: true, Variadic: true, Metavar: "LLDB_ARGS"},
			buildDirParam,
		},
		Callback: lldb,
	}
)

// prepare builds the project and exports PYTHONPATH for a launched tool.
func prepare(cc *command.Context, args command.Args, purpose string) (*session, string, error) {
	s := newSession(cc)
	buildDir := args.String("build_dir")
	if err := s.invokeBuild(purpose, command.Args{"build_dir": buildDir}); err != nil {
		return nil, "", err
	}
	site, err := s.setPythonPath(buildDir, false)
	if err != nil {
		return nil, "", err
	}
	return s, site, nil
}

func ipython(cc *command.Context, args command.Args) error {
	s, site, err := prepare(cc, args, "invoking ipython")
	if err != nil {
		return err
	}
	if site != "" {
		cc.Printf("💻 Launching IPython with PYTHONPATH=\"%s\"\n", site)
	}
	_, err = s.run(slices.Concat([]string{"ipython", "--ignore-cwd"}, args.Strings("ipython_args")), runtime.Replace())
	return err
}

func python(cc *command.Context, args command.Args) error {
	s, site, err := prepare(cc, args, "invoking Python")
	if err != nil {
		return err
	}
	if site != "" {
		cc.Printf("🐍 Launching Python with PYTHONPATH=\"%s\"\n", site)
	}

	safe, err := s.hasSafePath()
	if err != nil {
		return err
	}
	if !safe {
		cc.Printf("We're sorry, but this feature only works on Python 3.11 and greater 😢\n\n")
		cc.Printf("Why? Because we need the '-P' flag so the interpreter doesn't muck with PYTHONPATH\n\n")
		cc.Printf("However! You can still launch your own interpreter:\n\n")
		cc.Printf("  PYTHONPATH='%s' python\n\n", site)
		cc.Printf("And then call:\n\n")
		cc.Printf("import sys; del(sys.path[0])\n")
		return &runtime.ExitCodeError{Argv: []string{"python"}, Code: types.ExitFailure}
	}

	_, err = s.run(slices.Concat([]string{s.py.Path, "-P"}, args.Strings("python_args")), runtime.Replace())
	return err
}

func shell(cc *command.Context, args command.Args) error {
	s, site, err := prepare(cc, args, "invoking shell")
	if err != nil {
		return err
	}
	if site != "" {
		cc.Printf("💻 Launching shell with PYTHONPATH=\"%s\"\n", site)
	}

	sh := s.cfg.Env.Shell
	if sh == "" {
		sh = "sh"
	}
	cc.Printf("⚠  Change directory to avoid importing source instead of built package\n")
	cc.Printf("⚠  Ensure that your ~/.shellrc does not unset PYTHONPATH\n")
	_, err = s.run(slices.Concat([]string{sh}, args.Strings("shell_args")), runtime.Replace())
	return err
}

func run(cc *command.Context, args command.Args) error {
	argv := args.Strings("args")
	if len(argv) == 0 {
		return errors.New("no command given")
	}
	s := newSession(cc)
	buildDir := args.String("build_dir")

	if build, ok := cc.Lookup("build"); ok {
		// Build output would mix with the output of the command itself.
		quietCC := cc.WithStdout(cc.Stderr)
		if err := quietCC.Invoke(build, command.Args{"build_dir": buildDir, "quiet": true}); err != nil {
			return err
		}
	}

	if _, err := s.setPythonPath(buildDir, true); err != nil {
		return err
	}

	var (
		res *runtime.Result
		err error
	)
	if len(argv) == 1 {
		res, err = cc.Runner.Shell(s.ctx(), argv[0], runtime.Env(s.env), runtime.Echo(false), runtime.MustSucceed(false))
	} else {
		res, err = s.run(argv, runtime.Echo(false), runtime.MustSucceed(false))
	}
	if err != nil {
		return err
	}
	if res.Success() {
		return nil
	}

	if looksLikeScript(argv[0]) {
		s.println(warnStyle, "Did you mean to call `spin run python %s`?", strings.Join(argv, " "))
	}
	return &runtime.ExitCodeError{Argv: argv, Code: res.ExitCode}
}

// looksLikeScript reports whether name is an existing, non-executable
// Python file.
func looksLikeScript(name string) bool {
	if !strings.HasSuffix(name, ".py") {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.Mode()&0o111 == 0
}

func gdb(cc *command.Context, args command.Args) error {
	s, _, err := prepare(cc, args, "invoking gdb")
	if err != nil {
		return err
	}

	var program []string
	if code := args.String("code"); code != "" {
		if program, err = s.pythonCommand(code); err != nil {
			return err
		}
	}
	_, err = s.run(gdbArgs(s.py.Path, args.Strings("gdb_args"), program), runtime.Replace())
	return err
}

// gdbArgs builds the gdb command line. program, when set, is the Python
// command running the -c code.
func gdbArgs(python string, extra, program []string) []string {
	extra = slices.Clone(extra)
	if len(extra) > 0 && strings.HasSuffix(extra[0], ".py") {
		extra = slices.Concat([]string{"--args", python}, extra)
	}
	if len(program) > 0 {
		extra = slices.Concat(extra, []string{"--args"}, program)
	}
	return slices.Concat([]string{"gdb", "-ex", "set detach-on-fork on"}, extra)
}

func lldb(cc *command.Context, args command.Args) error {
	s, _, err := prepare(cc, args, "invoking lldb")
	if err != nil {
		return err
	}

	var program []string
	if code := args.String("code"); code != "" {
		if program, err = s.pythonCommand(code); err != nil {
			return err
		}
	}
	_, err = s.run(lldbArgs(s.py.Path, args.Strings("lldb_args"), program), runtime.Replace())
	return err
}

// lldbArgs builds the lldb command line. Without -c code, arguments before a
// "--" go to lldb and the rest is the program to debug.
func lldbArgs(python string, extra, program []string) []string {
	var lldbOpts []string
	if len(program) == 0 {
		if i := slices.Index(extra, "--"); i >= 0 {
			lldbOpts, program = slices.Clone(extra[:i]), slices.Clone(extra[i+1:])
		} else {
			program = slices.Clone(extra)
		}
	} else {
		lldbOpts = slices.Clone(extra)
	}

	if len(program) > 0 && strings.HasSuffix(program[0], ".py") {
		program = slices.Concat([]string{python}, program)
	}
	return slices.Concat(
		[]string{"lldb", "-O", "settings set target.process.follow-fork-mode child"},
		lldbOpts,
		[]string{"--"},
		program,
	)
}
