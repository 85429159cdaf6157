package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#8B5CF6")
	ColorSecondary = lipgloss.Color("#06B6D4")
	ColorAccent    = lipgloss.Color("#F59E0B")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorDimmed    = lipgloss.Color("#374151")

	ColorBgSelected = lipgloss.Color("#3B0764")
	ColorText       = lipgloss.Color("#F8FAFC")
	ColorTextMuted  = lipgloss.Color("#94A3B8")
)

// Header
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	QuestionStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	ProgressStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Panels
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// Log entries
var (
	EntryStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			MarginBottom(1)

	SelectedEntryStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgSelected).
				MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	FeedbackStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Italic(true)

	AudioBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)
)

// Status bar and notices
var (
	RecordingStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorNoticeStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	UpsellStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)
