package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Production environments log JSON;
// everything else gets the human-readable text formatter. Unknown levels fall
// back to info.
func NewLogger(level string, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
