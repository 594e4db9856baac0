// ABOUTME: Entry point for the pqcaudit command line tool.
// ABOUTME: Sets up configuration and logging, then dispatches to subcommands.

package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/config"
)

func main() {
	Execute()
}

// newLogger builds the process logger from config and environment.
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if strings.ToLower(cfg.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level := cfg.Log.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
