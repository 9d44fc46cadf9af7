// Package log provides the core's logging facade. It wraps
// github.com/sirupsen/logrus the same way the teacher's mmu package
// configured it inline: a plain text formatter with colours, timestamps
// and sorting all disabled, since core diagnostics are read from a
// terminal or piped to a file, not a TTY dashboard.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logrus's API the core depends on. Components
// take a Logger rather than a concrete *logrus.Logger so they can be
// exercised in tests with Null() without any global logrus state.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a Logger backed by logrus, configured for plain terminal
// output at debug level.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetOutput(os.Stderr)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// Null returns a Logger that discards everything, for components
// constructed in tests that don't care about diagnostics.
func Null() Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
