package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = newLogger(os.Getenv("LOG_LEVEL"))

func GetLogger() *logrus.Logger {
	return logg
}

func newLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(level))
	return l
}

// SetLogLevel adjusts the shared logger once configuration is loaded.
func SetLogLevel(level string) {
	logg.SetLevel(parseLevel(level))
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
