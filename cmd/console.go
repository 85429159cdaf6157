package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rsb-interview-lab/internal/audio/device"
	"rsb-interview-lab/internal/console"
	"rsb-interview-lab/internal/inbox"
	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the interview as a prompt-driven menu",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(_ *cobra.Command, _ []string) error {
	logger, err := newLogger("stderr")
	if err != nil {
		return err
	}
	defer logger.Sync()

	questions, err := loadQuestions(logger)
	if err != nil {
		return err
	}
	appCfg := loadAppConfig()

	session, err := newLocalSession(logger, questions, appCfg, metrics.NewMetrics())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir := questions.Uploads.InboxDir; dir != "" {
		watcher, err := inbox.New(dir, logger)
		if err != nil {
			logger.Warn("inbox disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Feed(ctx, session, func(doc interview.Document) {
				logger.Info("document selected from inbox", zap.String("name", doc.Name))
			})
		}
	}

	return console.New(console.Config{
		Questions: questions,
		Session:   session,
		Player:    device.NewSpeaker(),
		ExportDir: appCfg.Export.Dir,
		Logger:    logger,
	}).Run(ctx)
}
