package log

import (
	"io"
	"strings"

	logrus "github.com/sirupsen/logrus"
)

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Fields are attached to a single log entry.
type Fields = logrus.Fields

var logger = logrus.New()

// FromString converts a configuration level name into a logrus level.
// Unknown or empty names fall back to info.
func FromString(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel, "warning":
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func SetLogLevel(level logrus.Level) {
	logger.SetLevel(level)
}

func GetLogLevel() logrus.Level {
	return logger.GetLevel()
}

func SetLogFormatter(formatter logrus.Formatter) {
	logger.SetFormatter(formatter)
}

func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

func Debug(args ...interface{}) {
	logger.Debug(args...)
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Warn(args ...interface{}) {
	logger.Warn(args...)
}

func Error(args ...interface{}) {
	logger.Error(args...)
}

func Fatal(args ...interface{}) {
	logger.Fatal(args...)
}

func DebugWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Debug(msg)
}

func InfoWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	logger.WithFields(fields).Error(msg)
}
