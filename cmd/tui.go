package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rsb-interview-lab/internal/audio/device"
	"rsb-interview-lab/internal/inbox"
	"rsb-interview-lab/internal/metrics"
	"rsb-interview-lab/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interview in the terminal UI",
	Long: `Run the interview in a full-screen terminal UI.

Keys:
  ctrl+r     Start/stop recording
  ctrl+s     Submit the answer
  ctrl+o     Choose a document
  tab        Switch between answer and log
  up/down    Select a log entry
  enter, p   Play the selected answer
  ctrl+e     Export the transcript
  ctrl+c     Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// stdout belongs to the alternate screen
	logger, err := newLogger(app + ".log")
	if err != nil {
		return err
	}
	defer logger.Sync()

	questions, err := loadQuestions(logger)
	if err != nil {
		return err
	}
	appCfg := loadAppConfig()

	m := metrics.NewMetrics()
	session, err := newLocalSession(logger, questions, appCfg, m)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watcher *inbox.Watcher
	if dir := questions.Uploads.InboxDir; dir != "" {
		watcher, err = inbox.New(dir, logger)
		if err != nil {
			logger.Warn("inbox disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			logger.Info("watching inbox", zap.String("dir", watcher.Dir()))
		}
	}

	logger.Info("starting the terminal UI", zap.String("session_id", session.ID()))

	return tui.Run(tui.Config{
		Questions: questions,
		Session:   session,
		Player:    device.NewSpeaker(),
		ExportDir: appCfg.Export.Dir,
		Metrics:   m,
		Logger:    logger,
		Context:   ctx,
	}, watcher)
}
