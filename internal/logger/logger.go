package logger

import (
	"github.com/sirupsen/logrus"
)

// New returns the application logger: JSON-formatted logrus at info
// level, suitable for shipping to a log collector.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetLevel(logrus.InfoLevel)
	return log
}
