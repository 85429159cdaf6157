package config

import "rsb-interview-lab/internal/interview"

// Config is the question set file.
type Config struct {
	Title     string        `yaml:"title"`
	Subtitle  string        `yaml:"subtitle"`
	Questions []string      `yaml:"questions"`
	Feedback  string        `yaml:"feedback"`
	Upsell    UpsellConfig  `yaml:"upsell"`
	Uploads   UploadsConfig `yaml:"uploads"`
}

// UpsellConfig controls the inert purchase notice.
type UpsellConfig struct {
	Enabled bool   `yaml:"enabled"`
	Text    string `yaml:"text"`
}

// UploadsConfig controls where documents come from.
type UploadsConfig struct {
	// InboxDir is watched for new files; empty disables the watcher.
	InboxDir string `yaml:"inbox_dir"`
	// StartDir is where the file picker opens.
	StartDir string `yaml:"start_dir"`
}

const (
	DefaultTitle      = "RSB Interview Lab"
	DefaultSubtitle   = "Student Visa Interview Simulator with Voice and Document Analysis"
	DefaultUpsellText = "* To unlock full interview and detailed feedback, please purchase access (feature coming soon)"
)

// Default returns the built-in student visa question set.
func Default() *Config {
	questions := make([]string, len(interview.DefaultPrompts))
	for i, p := range interview.DefaultPrompts {
		questions[i] = string(p)
	}

	return &Config{
		Title:     DefaultTitle,
		Subtitle:  DefaultSubtitle,
		Questions: questions,
		Feedback:  interview.DefaultFeedback,
		Upsell: UpsellConfig{
			Enabled: true,
			Text:    DefaultUpsellText,
		},
	}
}

// Prompts converts the question list for the interview session.
func (c *Config) Prompts() []interview.Prompt {
	prompts := make([]interview.Prompt, len(c.Questions))
	for i, q := range c.Questions {
		prompts[i] = interview.Prompt(q)
	}
	return prompts
}

func (c *Config) GetTotalQuestions() int {
	return len(c.Questions)
}
