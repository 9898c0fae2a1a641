// SPDX-License-Identifier: MPL-2.0

package command

import "slices"

type (
	// Section is a help group and its commands in registration order.
	Section struct {
		Name     string
		Commands []*Command
	}

	// Registry maps section names to ordered commands. Section order and
	// command order follow registration order.
	Registry struct {
		sections []*Section
		byName   map[string]*Command
	}
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register appends cmd to section, creating the section if needed, and sets
// cmd.Section. A second command with the same name is rejected with a
// *DuplicateCommandError.
func (r *Registry) Register(cmd *Command, section string) error {
	if existing, ok := r.byName[cmd.Name]; ok {
		return &DuplicateCommandError{Name: cmd.Name, Existing: specOrName(existing), New: specOrName(cmd)}
	}

	cmd.Section = section
	r.byName[cmd.Name] = cmd

	for _, s := range r.sections {
		if s.Name == section {
			s.Commands = append(s.Commands, cmd)
			return nil
		}
	}
	r.sections = append(r.sections, &Section{Name: section, Commands: []*Command{cmd}})
	return nil
}

func specOrName(c *Command) string {
	if c.Spec != "" {
		return c.Spec
	}
	return c.Name
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Sections returns the sections in registration order. The returned slices
// are copies.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	for i, s := range r.sections {
		out[i] = Section{Name: s.Name, Commands: slices.Clone(s.Commands)}
	}
	return out
}

// All returns every command in section order.
func (r *Registry) All() []*Command {
	var out []*Command
	for _, s := range r.sections {
		out = append(out, s.Commands...)
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.byName)
}
