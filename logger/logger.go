package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  = logrus.New()
	WarnLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLoggers points the three loggers at stdout and at a rotated file under LOG_DIR.
// Safe to call more than once; the last call wins.
func InitLoggers() {
	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		dir = "logs"
	}

	level := parseLevel(os.Getenv("LOG_LEVEL"))

	setup(InfoLogger, filepath.Join(dir, "info.log"), level)
	setup(WarnLogger, filepath.Join(dir, "warn.log"), level)
	setup(ErrorLogger, filepath.Join(dir, "error.log"), level)
}

func setup(l *logrus.Logger, file string, level logrus.Level) {
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(level)

	if os.Getenv("LOG_TO_FILE") == "false" {
		l.SetOutput(os.Stdout)
		return
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		l.SetOutput(os.Stdout)
		l.Warnf("Log directory unavailable, logging to stdout only: %v", err)
		return
	}

	l.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}))
}

func parseLevel(s string) logrus.Level {
	switch s {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
