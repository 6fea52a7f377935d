package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/degreechain/internal/config"
)

// setupLogger configures the standard logrus logger every package logs through
func setupLogger(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return nil
}
