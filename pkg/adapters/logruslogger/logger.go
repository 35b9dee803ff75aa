// Package logruslogger adapts a logrus logger to the ports.Logger interface.
// It is intended for embedding framecast into applications that already
// route their logs through logrus.
package logruslogger

import (
	"github.com/sirupsen/logrus"

	"github.com/user/framecast/pkg/ports"
)

// Logger forwards log messages to a logrus entry.
type Logger struct {
	entry *logrus.Entry
}

// New wraps an existing logrus logger.
func New(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

// NewWithLevel creates a standalone logrus logger at the given level.
func NewWithLevel(level ports.LogLevel) *Logger {
	l := logrus.New()
	switch level {
	case ports.LevelDebug:
		l.SetLevel(logrus.DebugLevel)
	case ports.LevelInfo:
		l.SetLevel(logrus.InfoLevel)
	case ports.LevelWarn:
		l.SetLevel(logrus.WarnLevel)
	case ports.LevelError:
		l.SetLevel(logrus.ErrorLevel)
	}
	return New(l)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

// WithComponent returns a logger that tags messages with the component name.
func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{entry: l.entry.WithField("component", component)}
}
