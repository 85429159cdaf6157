package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a question set file. Missing optional fields fall back to the
// built-in defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filename, err)
	}

	return Parse(data)
}

// Parse decodes and validates a question set.
func Parse(data []byte) (*Config, error) {
	config := Default()
	config.Questions = nil

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads filename, or returns the built-in set when it is empty.
func LoadOrDefault(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	return Load(filename)
}

func validateConfig(config *Config) error {
	if len(config.Questions) == 0 {
		return fmt.Errorf("questions must contain at least one entry")
	}

	for i, q := range config.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
	}

	if strings.TrimSpace(config.Feedback) == "" {
		return fmt.Errorf("feedback must not be empty")
	}

	if config.Upsell.Enabled && strings.TrimSpace(config.Upsell.Text) == "" {
		return fmt.Errorf("upsell.text is required when upsell.enabled is true")
	}

	return nil
}
