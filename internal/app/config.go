package app

import "errors"

// Config holds everything an App instance needs to resolve a project.
type Config struct {
	ProjectRoot string
	ContextFile string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectRoot == "" {
		return nil, errors.New("ProjectRoot is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
