// Package logger builds the run logger: logrus with full timestamps, level
// from configuration, and an optional mirror to a log file. The logger is
// constructed in main and passed into the pipeline; there is no package-level
// instance.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a configured logger. An unparseable level falls back to info.
// When filePath is set, output goes to both stdout and the file (appended,
// created if missing).
func New(levelStr, filePath string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		log.SetOutput(io.MultiWriter(os.Stdout, file))
	}
	return log, nil
}
