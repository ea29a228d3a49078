package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging applies the log level and optionally tees logrus output
// into a size-rotated file, so long ensembles don't fill the disk with a
// single unbounded log.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	if logFile == "" {
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
