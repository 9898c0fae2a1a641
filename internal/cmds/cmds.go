// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/resolve"
)

// Module paths of the built-in command sets.
const (
	MesonModule = "spin.cmds.meson"
	PipModule   = "spin.cmds.pip"
	BuildModule = "spin.cmds.build"
	MetaModule  = "spin.cmds.meta"
)

func init() {
	resolve.RegisterModule(MesonModule, table(map[string]*command.Command{
		"build":   buildCmd,
		"test":    testCmd,
		"ipython": ipythonCmd,
		"python":  pythonCmd,
		"shell":   shellCmd,
		"run":     runCmd,
		"docs":    docsCmd,
		"gdb":     gdbCmd,
		"lldb":    lldbCmd,
	}))
	resolve.RegisterModule(PipModule, table(map[string]*command.Command{
		"install": installCmd,
	}))
	resolve.RegisterModule(BuildModule, table(map[string]*command.Command{
		"sdist": sdistCmd,
	}))
	resolve.RegisterModule(MetaModule, table(map[string]*command.Command{
		"introspect": introspectCmd,
		"version":    versionCmd,
	}))
}

// table records where each command's behavior is defined.
func table(cmds map[string]*command.Command) resolve.Table {
	t := make(resolve.Table, len(cmds))
	for symbol, cmd := range cmds {
		cmd.Origin = command.OriginOf(cmd.Callback)
		cmd.Origin.Symbol = symbol
		t[symbol] = cmd
	}
	return t
}
