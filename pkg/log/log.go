// Package log wraps logrus behind a small interface so that core
// packages never import a concrete logging library directly. The core
// only ever logs diagnostics for runtime anomalies; it
// never logs on the hot path of CPU/PPU/APU stepping.
package log

import "github.com/sirupsen/logrus"

// Logger is the subset of logrus used across the core.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a Logger backed by logrus, formatted for terminal output
// without timestamps (the host decides whether to show timestamps).
func New() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &logrusLogger{l}
}

type logrusLogger struct {
	*logrus.Logger
}

// NewNull returns a Logger that discards everything, used by tests and
// by hosts that don't want diagnostic noise.
func NewNull() Logger {
	l := logrus.New()
	l.SetOutput(nullWriter{})
	return &logrusLogger{l}
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
