package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/tasktrack/internal/config"
)

func TestSetup(t *testing.T) {
	logger := Setup(&config.Config{GinMode: "release", LogLevel: "debug"})
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = Setup(&config.Config{GinMode: "debug", LogLevel: "chatty"})
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
