// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all top-level CLI output.
const (
	// ColorPrimary is purple, used for titles.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, used for de-emphasized text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, used for commands to type.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for the root help title.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	// WarningStyle is for resolution warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for commands the user should run.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// tracebackStyle renders the recovered panic.
	tracebackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// bugReportStyle renders the report instructions after a panic.
	bugReportStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning)
)
