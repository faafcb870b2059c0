// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Chosen for dark terminal
// backgrounds; lipgloss drops colors when output is not a terminal.
const (
	// ColorPrimary is purple, for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green, for confirmations.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, for errors and expired packages.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, for warnings and packages running low.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, for ids, keys and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, config keys and ids.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// Table styles used by "medkit list".
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)
	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
	tableExpiredStyle = tableCellStyle.
				Foreground(ColorError)
	tableEmptyStyle = tableCellStyle.
			Foreground(ColorMuted)
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)
)
