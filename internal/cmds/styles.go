// SPDX-License-Identifier: MPL-2.0

package cmds

import "github.com/charmbracelet/lipgloss"

var (
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	exportStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	noticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)
