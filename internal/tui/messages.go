package tui

import (
	"context"
	"time"

	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// Message types for tea.Cmd async operations

// recordingStartedMsg is sent once the microphone is open or has failed
type recordingStartedMsg struct {
	err error
}

// recordingStoppedMsg carries the finalized blob
type recordingStoppedMsg struct {
	blob *interview.Blob
	err  error
}

// recordingTickMsg refreshes the elapsed time while recording
type recordingTickMsg time.Time

type playbackDoneMsg struct {
	index int
	err   error
}

type exportedMsg struct {
	path string
	err  error
}

// DocumentMsg is sent by the inbox watcher after it selected a document.
type DocumentMsg struct {
	Document interview.Document
}

const recordingTickInterval = 250 * time.Millisecond

func startRecording(ctx context.Context, s *interview.Session) tea.Cmd {
	return func() tea.Msg {
		return recordingStartedMsg{err: s.StartRecording(ctx)}
	}
}

func stopRecording(s *interview.Session) tea.Cmd {
	return func() tea.Msg {
		blob, err := s.StopRecording()
		return recordingStoppedMsg{blob: blob, err: err}
	}
}

func recordingTick() tea.Cmd {
	return tea.Tick(recordingTickInterval, func(t time.Time) tea.Msg {
		return recordingTickMsg(t)
	})
}

func play(ctx context.Context, p Player, index int, blob *interview.Blob) tea.Cmd {
	return func() tea.Msg {
		return playbackDoneMsg{index: index, err: p.Play(ctx, blob)}
	}
}

func export(dir string, snap interview.Snapshot) tea.Cmd {
	return func() tea.Msg {
		path, err := storage.SaveTranscript(dir, snap)
		return exportedMsg{path: path, err: err}
	}
}
