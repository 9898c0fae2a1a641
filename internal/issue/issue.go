// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigParseErrorId
	CommandsSectionMissingId
	PackageNotConfiguredId
	SitePackagesNotFoundId
	SitePackagesAmbiguousId
	CustomCommandLoadFailedId
	CommandNotFoundId
	ExecutableNotFoundId
	UnhandledErrorId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project documentation for this issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

const readmeLink HttpLink = "https://github.com/spinkit/spin#readme"

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# No spin configuration found!

spin reads its settings from the first of these files in the current directory:

1. ` + "`.spin.toml`" + `
2. ` + "`spin.toml`" + `
3. ` + "`pyproject.toml`" + `

## Things you can try:
- Run spin from the root of your project.
- Add a ` + "`[tool.spin]`" + ` table to your ` + "`pyproject.toml`" + `:
~~~toml
[tool.spin]
package = "example_pkg"

[tool.spin.commands]
"Build" = ["spin.cmds.meson.build", "spin.cmds.meson.test"]
~~~`,
		docLinks: []HttpLink{readmeLink},
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse configuration

One of the configuration files is not valid TOML, or its ` + "`[tool.spin]`" + `
table does not match the expected shape.

## Things you can try:
- Check the file for unbalanced quotes or brackets.
- ` + "`commands`" + ` must be a list of strings or a table of lists.
- ` + "`kwargs`" + ` must be a table keyed by command reference.`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	}

	commandsSectionMissingIssue = &Issue{
		id: CommandsSectionMissingId,
		mdMsg: `
# No commands configured

The configuration has no ` + "`tool.spin.commands`" + ` entry, so spin has
nothing to dispatch to.

## Things you can try:
- List the built-in commands you want:
~~~toml
[tool.spin]
commands = ["spin.cmds.meson.build", "spin.cmds.meson.test"]
~~~`,
		docLinks: []HttpLink{readmeLink},
	}

	packageNotConfiguredIssue = &Issue{
		id: PackageNotConfiguredId,
		mdMsg: `
# Package name not configured

This command needs ` + "`tool.spin.package`" + ` to know which module to import.

## Things you can try:
~~~toml
[tool.spin]
package = "example_pkg"
~~~`,
	}

	sitePackagesNotFoundIssue = &Issue{
		id: SitePackagesNotFoundId,
		mdMsg: `
# No site-packages directory found

The install directory does not contain a ` + "`site-packages`" + ` or
` + "`dist-packages`" + ` directory for the active Python.

## Things you can try:
- Build the project first:
~~~
$ spin build
~~~
- Check that the interpreter spin queries is the one you built with.`,
	}

	sitePackagesAmbiguousIssue = &Issue{
		id: SitePackagesAmbiguousId,
		mdMsg: `
# More than one site-packages directory

The install directory holds several candidate ` + "`site-packages`" + ` directories
and spin cannot tell which one to use.

## Things you can try:
- Remove the install directory and build again:
~~~
$ spin build --clean
~~~`,
	}

	customCommandLoadFailedIssue = &Issue{
		id: CustomCommandLoadFailedId,
		mdMsg: `
# Custom command file failed to load

A file referenced as ` + "`path:symbol`" + ` in ` + "`tool.spin.commands`" + ` raised an error
while its top-level code ran.

## Things you can try:
- Fix the error reported above at the given line.
- Lua files must call ` + "`spin.command{...}`" + ` and assign the result to a global.
- Shell files must define the referenced function.`,
		docLinks: []HttpLink{readmeLink},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

The requested command is not registered.

## Things you can try:
- List the available commands:
~~~
$ spin --help
~~~
- Check the ` + "`tool.spin.commands`" + ` section for warnings printed as ` + "`!!`" + ` lines.`,
	}

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# Executable not found

spin delegates to external tools (meson, ninja, pytest, pip, sphinx,
gdb, lldb, ipython). The tool named above is not on your PATH.

## Things you can try:
- Install the missing tool into the active environment.
- Set ` + "`tool.spin.meson.cli`" + ` to point at a custom meson.`,
	}

	unhandledErrorIssue = &Issue{
		id: UnhandledErrorId,
		mdMsg: `
# Unhandled error

spin hit an internal error. This is a bug in spin or in a custom command.

## Please report it
Include the output above, your spin version and your configuration.`,
		extLinks: []HttpLink{"https://github.com/spinkit/spin/issues"},
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():          configNotFoundIssue,
		configParseErrorIssue.Id():        configParseErrorIssue,
		commandsSectionMissingIssue.Id():  commandsSectionMissingIssue,
		packageNotConfiguredIssue.Id():    packageNotConfiguredIssue,
		sitePackagesNotFoundIssue.Id():    sitePackagesNotFoundIssue,
		sitePackagesAmbiguousIssue.Id():   sitePackagesAmbiguousIssue,
		customCommandLoadFailedIssue.Id(): customCommandLoadFailedIssue,
		commandNotFoundIssue.Id():         commandNotFoundIssue,
		executableNotFoundIssue.Id():      executableNotFoundIssue,
		unhandledErrorIssue.Id():          unhandledErrorIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
