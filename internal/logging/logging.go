package logging

import (
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/tasktrack/internal/config"
)

// Setup configures the standard logrus logger from the config and returns it.
// Release mode logs JSON; everything else logs text.
func Setup(cfg *config.Config) *logrus.Logger {
	logger := logrus.StandardLogger()

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
