// Package tui is the terminal front end of the interview simulator.
package tui

import (
	"context"
	"errors"
	"fmt"

	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/metrics"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// FocusArea represents which pane receives keys
type FocusArea int

const (
	FocusAnswer FocusArea = iota
	FocusLog
)

// Player plays back a recorded answer.
type Player interface {
	Play(ctx context.Context, blob *interview.Blob) error
}

// Config holds the TUI dependencies.
type Config struct {
	Questions *config.Config
	Session   *interview.Session
	Player    Player
	ExportDir string
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Context   context.Context
}

// Model is the Bubbletea model of one interview.
type Model struct {
	ctx       context.Context
	session   *interview.Session
	questions *config.Config
	player    Player
	exportDir string
	metrics   *metrics.Metrics
	logger    *zap.Logger

	width  int
	height int
	ready  bool
	focus  FocusArea

	starting bool
	picking  bool
	playing  int // index of the entry being played, -1 when idle
	selected int

	notice    string
	noticeErr bool

	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
}

func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	questions := cfg.Questions
	if questions == nil {
		questions = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your answer... (ctrl+s to submit)"
	ta.Focus()
	ta.CharLimit = 0 // no limit
	ta.SetWidth(80)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	fp := filepicker.New()
	fp.CurrentDirectory = questions.Uploads.StartDir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory = "."
	}
	fp.ShowPermissions = false

	return Model{
		ctx:        ctx,
		session:    cfg.Session,
		questions:  questions,
		player:     cfg.Player,
		exportDir:  cfg.ExportDir,
		metrics:    cfg.Metrics,
		logger:     logger,
		focus:      FocusAnswer,
		playing:    -1,
		selected:   -1,
		textarea:   ta,
		viewport:   viewport.New(80, 10),
		spinner:    sp,
		filepicker: fp,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		headerHeight := 7 // title, subtitle, question box
		footerHeight := 11
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.textarea.SetWidth(msg.Width - 4)
		m.updateViewportContent()

		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.starting || m.session.IsRecording() || m.playing >= 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case recordingStartedMsg:
		m.starting = false
		if msg.err != nil {
			m.setCaptureError(msg.err)
			return m, nil
		}
		m.setNotice("Recording... press ctrl+r to stop")
		return m, recordingTick()

	case recordingTickMsg:
		if m.session.IsRecording() {
			return m, recordingTick()
		}
		return m, nil

	case recordingStoppedMsg:
		if msg.err != nil && msg.blob == nil {
			m.setError(msg.err)
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("recording stopped with error", zap.Error(msg.err))
		}
		m.setNotice(fmt.Sprintf("Recording attached (%s)", describeBlob(msg.blob)))
		return m, nil

	case playbackDoneMsg:
		m.playing = -1
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setError(fmt.Errorf("playback: %w", msg.err))
		}
		m.updateViewportContent()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("export: %w", msg.err))
			return m, nil
		}
		m.setNotice("Transcript saved to " + msg.path)
		return m, nil

	case DocumentMsg:
		m.setNotice("Uploaded: " + msg.Document.Name)
		return m, nil
	}

	if m.picking {
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if err := m.session.Close(); err != nil {
			m.logger.Warn("closing session", zap.Error(err))
		}
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+r":
		return m.toggleRecording()

	case "ctrl+s":
		return m.submit()

	case "ctrl+o":
		m.picking = true
		return m, m.filepicker.Init()

	case "ctrl+e":
		if m.exportDir == "" {
			m.setError(errors.New("export is disabled"))
			return m, nil
		}
		return m, export(m.exportDir, m.session.Snapshot())

	case "tab":
		if m.focus == FocusAnswer {
			m.focus = FocusLog
			m.textarea.Blur()
			if m.selected < 0 {
				m.selected = len(m.session.Entries()) - 1
			}
			m.updateViewportContent()
			return m, nil
		}
		m.focus = FocusAnswer
		m.updateViewportContent()
		return m, m.textarea.Focus()
	}

	if m.focus == FocusLog {
		return m.handleLogKey(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.session.SetText(m.textarea.Value())
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.picking = false
		doc, err := interview.DocumentFromFile(path)
		if err != nil {
			m.setError(err)
			return m, cmd
		}
		m.session.SelectFile(doc)
		m.setNotice("Uploaded: " + doc.Name)
	}

	return m, cmd
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.session.Entries()

	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(entries)-1 {
			m.selected++
		}
	case "enter", "p":
		return m.playSelected(entries)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.updateViewportContent()
	return m, nil
}

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.starting {
		return m, nil
	}
	if m.session.IsRecording() {
		return m, stopRecording(m.session)
	}

	m.starting = true
	m.clearNotice()
	return m, tea.Batch(startRecording(m.ctx, m.session), m.spinner.Tick)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	entry, err := m.session.Submit()
	if err != nil {
		m.setError(err)
		return m, nil
	}

	m.textarea.Reset()
	m.selected = entry.Index
	m.setNotice(fmt.Sprintf("Answer %d logged. %s", entry.Index+1, entry.Feedback))
	m.updateViewportContent()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) playSelected(entries []interview.LogEntry) (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(entries) {
		return m, nil
	}
	entry := entries[m.selected]
	switch {
	case !entry.HasAudio():
		m.setError(errors.New("this answer has no audio"))
		return m, nil
	case m.player == nil:
		m.setError(errors.New("playback is not available"))
		return m, nil
	case m.playing >= 0:
		return m, nil
	}

	m.playing = entry.Index
	m.updateViewportContent()
	return m, tea.Batch(play(m.ctx, m.player, entry.Index, entry.Audio), m.spinner.Tick)
}

// setCaptureError shows microphone failures as a notice; the draft and log
// are unaffected.
func (m *Model) setCaptureError(err error) {
	switch {
	case errors.Is(err, interview.ErrPermissionDenied):
		m.setError(errors.New("microphone access was denied; you can still type your answer"))
	case errors.Is(err, interview.ErrDeviceUnavailable):
		m.setError(errors.New("no microphone available; you can still type your answer"))
	default:
		m.setError(err)
	}
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
}

func (m *Model) setError(err error) {
	m.notice = err.Error()
	m.noticeErr = true
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeErr = false
}

func describeBlob(b *interview.Blob) string {
	if b.Duration > 0 {
		return fmt.Sprintf("%.1fs", b.Duration)
	}
	return fmt.Sprintf("%d bytes", b.Size())
}
