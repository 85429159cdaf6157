package tui

import (
	"context"
	"fmt"

	"rsb-interview-lab/internal/inbox"
	"rsb-interview-lab/internal/interview"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Run starts the TUI. When watcher is not nil, files dropped into its folder
// are selected into the session while the program runs.
func Run(cfg Config, watcher *inbox.Watcher) error {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cfg.Context = ctx

	p := tea.NewProgram(New(cfg), tea.WithAltScreen(), tea.WithContext(ctx))

	if watcher != nil {
		go watcher.Feed(ctx, cfg.Session, func(doc interview.Document) {
			p.Send(DocumentMsg{Document: doc})
		})
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if err := cfg.Session.Close(); err != nil && cfg.Logger != nil {
		cfg.Logger.Warn("closing session", zap.Error(err))
	}
	return nil
}
