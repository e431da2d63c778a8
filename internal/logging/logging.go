package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger writing to stderr. Unknown levels fall back
// to info; format is "text" or "json".
func NewLogger(level, format string, disableTimestamp bool) *logrus.Logger {
	return newLogger(os.Stderr, level, format, disableTimestamp)
}

func newLogger(out io.Writer, level, format string, disableTimestamp bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: disableTimestamp})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: disableTimestamp,
			FullTimestamp:    true,
		})
	}
	return l
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
