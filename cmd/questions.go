package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Validate and print the question set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger("stderr")
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadQuestions(logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n%s\n\n", cfg.Title, cfg.Subtitle)
		for i, q := range cfg.Questions {
			fmt.Fprintf(out, "%d. %s\n", i+1, q)
		}
		fmt.Fprintf(out, "\nFeedback: %s\n", cfg.Feedback)
		if cfg.Upsell.Enabled {
			fmt.Fprintf(out, "Upsell: %s\n", cfg.Upsell.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
}
