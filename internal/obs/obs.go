// Package obs wraps github.com/sirupsen/logrus behind a small interface so
// internal/cek and internal/staged never import a logging library directly
// — only cmd/scalus constructs a concrete Logger,
// exactly as the only place the teacher's own walletserver middleware
// calls into logrus is its HTTP logging middleware, never the ledger/VM
// packages underneath it.
package obs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the narrow surface cmd/scalus logs through (and adapts to the
// pipeline's abi.LoggerSink): structured,
// leveled logging keyed by field, not a general logrus.Logger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New constructs a Logger writing JSON-formatted entries to stderr at the
// given level, matching the teacher's own preference for structured
// fields over printf-style log lines once a request has more than one
// piece of context attached to it.
func New(level logrus.Level) Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(level)
	return logrusLogger{entry: logrus.NewEntry(base)}
}

func (l logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l logrusLogger) WithField(key string, value any) Logger {
	return logrusLogger{entry: l.entry.WithField(key, value)}
}

// Discard is a Logger that drops every message, used where a component
// requires a Logger but a caller (e.g. a test) has nothing to observe it
// with.
var Discard Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Errorf(string, ...any) {}
func (d discardLogger) WithField(string, any) Logger { return d }
