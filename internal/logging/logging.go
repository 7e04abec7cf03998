// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// Setup sets the log level and formatter. An unknown level falls back to info.
func Setup(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// GormLevel picks the gorm logger level matching the logrus level.
func GormLevel() logger.LogLevel {
	switch logrus.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return logger.Info
	case logrus.InfoLevel, logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
