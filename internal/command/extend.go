// SPDX-License-Identifier: MPL-2.0

package command

import "slices"

type (
	// Invoker runs the parent command with replay under the current Context.
	Invoker func(replay Args) error

	// ExtendFunc is the user behavior of an extended command.
	ExtendFunc func(cc *Context, args Args, parent Invoker) error

	// ExtendOptions controls how Extend derives a command.
	ExtendOptions struct {
		// Name of the new command. Empty derives it from the function name.
		Name string
		// Doc replaces the parent's help as the base text when non-nil,
		// including when it points at "".
		Doc *string
		// Help is the new command's own documentation, appended below the
		// base text.
		Help string
		// Remove lists parent parameter names hidden from the CLI surface.
		// Names the parent does not have are ignored.
		Remove []string
		// Params are added after the inherited parameters.
		Params []Param
	}
)

// Doc is a convenience for ExtendOptions.Doc.
func Doc(s string) *string {
	return &s
}

// Extend returns a constructor deriving a command from parent.
//
// The derived command owns a deep copy of parent's parameters minus those in
// opts.Remove, which move to Hidden, plus opts.Params. Its callback calls fn
// with an Invoker that runs parent through Context.Invoke. parent itself is
// never modified and stays usable on its own.
//
// The constructor fails with ErrAnonymousExtension when no name can be
// derived and with a *DuplicateParamError when opts.Params repeats a
// parameter the parent already has.
//
//	docs, err := command.Extend(build, command.ExtendOptions{
//		Help:   "Build, then render the documentation.",
//		Remove: []string{"gcov"},
//	})(func(cc *command.Context, args command.Args, parent command.Invoker) error {
//		if err := parent(args); err != nil {
//			return err
//		}
//		return renderDocs(cc)
//	})
func Extend(parent *Command, opts ExtendOptions) func(ExtendFunc) (*Command, error) {
	return func(fn ExtendFunc) (*Command, error) {
		origin := OriginOf(fn)

		name := opts.Name
		if name == "" {
			name = CommandName(FuncName(origin.Symbol))
		}
		if name == "" {
			return nil, ErrAnonymousExtension
		}

		base := parent.Help
		if opts.Doc != nil {
			base = *opts.Doc
		}

		child := &Command{
			Name:           name,
			Help:           ComposeHelp(base, opts.Help),
			Hidden:         cloneParams(parent.Hidden),
			Parent:         parent,
			Origin:         origin,
			AllowExtraArgs: parent.AllowExtraArgs,
		}

		for _, p := range parent.Params {
			if slices.Contains(opts.Remove, p.Name) {
				child.Hidden = append(child.Hidden, p.Clone())
				continue
			}
			child.Params = append(child.Params, p.Clone())
		}
		for _, p := range opts.Params {
			if _, exists := child.lookupParam(p.Name); exists {
				return nil, &DuplicateParamError{Command: parent.Name, Param: p.Name}
			}
			child.Params = append(child.Params, p.Clone())
		}

		child.Callback = func(cc *Context, args Args) error {
			invokeParent := func(replay Args) error {
				return cc.Invoke(parent, replay)
			}
			return fn(cc, args, invokeParent)
		}
		return child, nil
	}
}
