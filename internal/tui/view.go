package tui

import (
	"fmt"
	"strings"
	"time"

	"rsb-interview-lab/internal/interview"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.picking {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			FocusedPanelStyle.Render("Select a document:\n\n"+m.filepicker.View()),
			HelpStyle.Render("enter: select • esc: cancel"),
		)
	}

	logStyle := PanelStyle
	answerStyle := FocusedPanelStyle
	if m.focus == FocusLog {
		logStyle, answerStyle = FocusedPanelStyle, PanelStyle
	}

	sections := []string{
		m.renderHeader(),
		logStyle.Render(m.viewport.View()),
		answerStyle.Render(m.textarea.View()),
		m.renderStatusBar(),
	}
	if m.notice != "" {
		style := NoticeStyle
		if m.noticeErr {
			style = ErrorNoticeStyle
		}
		sections = append(sections, style.Render(m.notice))
	}
	sections = append(sections, m.renderHelp())
	if m.questions.Upsell.Enabled {
		sections = append(sections, UpsellStyle.Render(m.questions.Upsell.Text))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	cursor, total := m.session.Progress()
	question := QuestionStyle.Render(string(m.session.CurrentPrompt()))
	if m.width > 4 {
		question = QuestionStyle.Width(m.width - 4).Render(string(m.session.CurrentPrompt()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(m.questions.Title),
		SubtitleStyle.Render(m.questions.Subtitle),
		ProgressStyle.Render(fmt.Sprintf("Question %d of %d", cursor+1, total)),
		question,
	)
}

func (m Model) renderStatusBar() string {
	var parts []string

	switch {
	case m.starting:
		parts = append(parts, m.spinner.View()+" Waiting for microphone...")
	case m.session.IsRecording():
		elapsed, size, _ := m.session.RecordingProgress()
		parts = append(parts, RecordingStyle.Render(fmt.Sprintf("● REC %s %s", elapsed.Truncate(100*time.Millisecond), formatBytes(size))))
	default:
		parts = append(parts, StatusStyle.Render("○ idle"))
	}

	draft := m.session.Draft()
	if draft.Audio != nil {
		parts = append(parts, AudioBadgeStyle.Render("🎙 "+describeBlob(draft.Audio)))
	}

	if doc, ok := m.session.Upload(); ok {
		parts = append(parts, StatusStyle.Render("📎 "+doc.Name))
	}

	if m.playing >= 0 {
		parts = append(parts, m.spinner.View()+StatusStyle.Render(fmt.Sprintf(" playing answer %d", m.playing+1)))
	}

	parts = append(parts, StatusStyle.Render(fmt.Sprintf("%d logged", len(m.session.Entries()))))

	if m.metrics != nil {
		snap := m.metrics.GetSnapshot()
		parts = append(parts, StatusStyle.Render(fmt.Sprintf("%d recordings, %d failed", snap.RecordingsCompleted, snap.RecordingsFailed)))
	}

	return strings.Join(parts, StatusStyle.Render("  │  "))
}

func (m Model) renderHelp() string {
	record := "ctrl+r record"
	if m.session.IsRecording() {
		record = "ctrl+r stop"
	}

	// submit stays dimmed while the draft is empty
	submit := DisabledStyle.Render("ctrl+s submit")
	if m.session.CanSubmit() {
		submit = LabelStyle.Render("ctrl+s submit")
	}

	keys := []string{"ctrl+o upload", "tab focus", "ctrl+e export", "ctrl+c quit"}
	if m.focus == FocusLog {
		keys = append(keys, "↑/↓ select", "enter/p play")
	}

	help := []string{HelpStyle.Render(record), submit}
	for _, k := range keys {
		help = append(help, HelpStyle.Render(k))
	}
	return strings.Join(help, HelpStyle.Render(" • "))
}

func (m *Model) updateViewportContent() {
	entries := m.session.Entries()
	if len(entries) == 0 {
		m.viewport.SetContent(StatusStyle.Render("No answers yet. Type or record your answer to the question above."))
		return
	}

	var b strings.Builder
	for i, e := range entries {
		style := EntryStyle
		if m.focus == FocusLog && i == m.selected {
			style = SelectedEntryStyle
		}
		b.WriteString(style.Render(renderEntry(e, i == m.playing)))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func renderEntry(e interview.LogEntry, playing bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(fmt.Sprintf("Q%d:", e.Index+1)), e.Question)

	answer := e.Answer
	if answer == "" {
		answer = "(no text)"
	}
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("A:"), answer)

	if e.Audio != nil {
		badge := "🎙 " + describeBlob(e.Audio)
		if playing {
			badge += " ▶"
		}
		b.WriteString(AudioBadgeStyle.Render(badge) + "\n")
	}

	b.WriteString(FeedbackStyle.Render(e.Feedback))
	return b.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
