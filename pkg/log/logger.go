package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New creates the application logger. An unknown level keeps Info and is reported back as an error.
func New(out io.Writer, level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	if level == "" {
		return log, nil
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return log, err
	}
	log.SetLevel(parsed)
	return log, nil
}
