// SPDX-License-Identifier: MPL-2.0

package cmds

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pelletier/go-toml/v2"

	"github.com/spinkit/spin/internal/command"
	"github.com/spinkit/spin/internal/runtime"
	"github.com/spinkit/spin/pkg/types"
)

var introspectCmd = &command.Command{
	Name: "introspect",
	Help: "🔍 Print a command's location and source code.",
	Params: []command.Param{
		{Name: "cmd", Kind: command.KindString, Positional: true, Required: true, Metavar: "CMD"},
	},
	Callback: introspect,
}

var versionCmd = &command.Command{
	Name:     "version",
	Help:     "Print the spin version.",
	Callback: printVersion,
}

// highlight renders source for the terminal. It returns src unchanged when
// rendering fails.
var highlight = func(src, lang string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		return src
	}
	out, err := r.Render("```" + lang + "\n" + src + "\n```\n")
	if err != nil {
		return src
	}
	return out
}

func introspect(cc *command.Context, args command.Args) error {
	name := args.String("cmd")
	cmd, ok := cc.Lookup(name)
	if !ok {
		fmt.Fprintf(cc.Stderr, "Command `%s` not found. Exiting.\n", name)
		return &runtime.ExitCodeError{Argv: []string{"introspect", name}, Code: types.ExitFailure}
	}

	spec := cmd.Spec
	if spec == "" {
		spec = cmd.Origin.Module
	}
	cc.Printf("%s\n\n", headingStyle.Render(fmt.Sprintf("The `%s` command is defined in `%s`:", name, spec)))

	origin := cmd.Origin
	if origin.File != "" {
		cc.Printf("%s:%d\n\n", origin.File, origin.Line)
	}
	src, err := readSource(origin.File, origin.Line)
	if err != nil {
		cc.Printf("(source not available: %v)\n", err)
	} else {
		cc.Printf("%s\n", highlight(src, sourceLang(origin.Lang)))
	}

	if len(cmd.Overrides) > 0 {
		cc.Printf("%s\n\n", headingStyle.Render("The function has the following keyword overrides defined:"))
		data, err := toml.Marshal(cmd.Overrides)
		if err != nil {
			return err
		}
		cc.Printf("%s\n", data)
	}
	return nil
}

func printVersion(cc *command.Context, _ command.Args) error {
	cc.Printf("spin %s\n", cc.Version)
	return nil
}

func sourceLang(lang string) string {
	if lang == command.LangShell {
		return "bash"
	}
	return lang
}

// readSource returns the definition starting at line: every line up to and
// including the first unindented line closing a block ("}", ")" or "end").
func readSource(file string, line int) (string, error) {
	if file == "" || line <= 0 {
		return "", fmt.Errorf("no source location recorded")
	}
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if n < line {
			continue
		}
		text := scanner.Text()
		lines = append(lines, text)
		if n > line && closesBlock(text) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%s has no line %d", file, line)
	}
	return strings.Join(lines, "\n"), nil
}

func closesBlock(line string) bool {
	return strings.HasPrefix(line, "}") || strings.HasPrefix(line, ")") || strings.HasPrefix(line, "end")
}
