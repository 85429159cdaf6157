package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rsb-interview-lab/internal/metrics"
	"rsb-interview-lab/internal/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the interview as a Telegram bot",
	Long: `Run the interview as a Telegram bot. Every chat gets its own session;
answers are typed or sent as voice messages and documents are attached by
sending a file. Requires TELEGRAM_BOT_TOKEN.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(_ *cobra.Command, _ []string) error {
	logger, err := newLogger("")
	if err != nil {
		return err
	}
	defer logger.Sync()

	appCfg := loadAppConfig()
	if appCfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	questions, err := loadQuestions(logger)
	if err != nil {
		return err
	}

	bot := telegram.New(appCfg.Telegram.Token, telegram.WithAPIURL(appCfg.Telegram.APIURL))
	handler := telegram.NewHandler(bot, telegram.HandlerOptions{
		Questions: questions,
		Telegram:  appCfg.Telegram,
		ExportDir: appCfg.Export.Dir,
		Metrics:   metrics.NewMetrics(),
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler.StartSessionCleanup(ctx)

	logger.Info("starting the telegram bot",
		zap.String("version", version),
		zap.Int("questions", questions.GetTotalQuestions()),
		zap.Bool("upsell", questions.Upsell.Enabled),
	)

	err = bot.StartPolling(ctx, appCfg.Telegram.PollTimeout, logger, handler.HandleUpdate)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("polling updates: %w", err)
	}

	logger.Info("telegram bot stopped")
	return nil
}
