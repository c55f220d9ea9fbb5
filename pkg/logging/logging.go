package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger configures the standard logrus logger to write to stdout and a
// size-rotated file at logPath. The returned closer releases the file.
func FileLogger(level logrus.Level, logPath string) (io.Closer, *logrus.Logger, error) {
	if dir := filepath.Dir(logPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	file := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}

	logger := logrus.StandardLogger()
	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(level)
	return file, logger, nil
}

// ConsoleLogger is the CLI variant: stderr only, no file.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	return logger
}

// ParseLevel accepts the LOG_LEVEL spellings; unknown values mean error.
func ParseLevel(s string) logrus.Level {
	switch s {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}
