package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "rsb-interview-lab"

	defaultQuestionsFile = "config/questions.yaml"
)

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "Student visa mock interview simulator with voice answers and document upload",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("INTERVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", defaultQuestionsFile, "question set file; built-in questions are used when it does not exist")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stdout")
	rootCmd.PersistentFlags().String("export-dir", "", "directory for exported transcripts (INTERVIEW_EXPORT_DIR)")

	for _, name := range []string{"config", "debug", "json", "log-file"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatalf("binding %s flag: %v", name, err)
		}
	}

	if err := config.BindAppEnv(viper.GetViper()); err != nil {
		log.Fatalf("binding environment: %v", err)
	}
	if err := viper.BindPFlag(config.KeyExportDir, rootCmd.PersistentFlags().Lookup("export-dir")); err != nil {
		log.Fatalf("binding export-dir flag: %v", err)
	}
}

// loadAppConfig reads the runtime settings from the environment and flags.
func loadAppConfig() *config.AppConfig {
	return config.LoadAppConfig(viper.GetViper())
}

// newLogger builds the logger from the persistent flags. fallbackOutput is
// used when --log-file is not set.
func newLogger(fallbackOutput string) (*zap.Logger, error) {
	output := viper.GetString("log-file")
	if output == "" {
		output = fallbackOutput
	}

	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), output)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}

// loadQuestions reads the question set. Only the default path may be missing.
func loadQuestions(l *zap.Logger) (*config.Config, error) {
	path := viper.GetString("config")

	if path == defaultQuestionsFile {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			l.Info("question file not found, using built-in questions", zap.String("path", path))
			path = ""
		}
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	l.Debug("question set loaded",
		zap.String("path", path),
		zap.Int("questions", cfg.GetTotalQuestions()),
	)
	return cfg, nil
}
