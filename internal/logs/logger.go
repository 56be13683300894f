// Package logs configures the process-wide logrus logger.
package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the application logger. It is usable before Init with logrus defaults.
var Logger = logrus.New()

// Options are the logger settings read from config.
type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // text|json
	Output io.Writer
}

// Init replaces Logger according to opts.
func Init(opts Options) *logrus.Logger {
	l := logrus.New()

	switch opts.Level {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warning", "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	Logger = l
	return l
}

// With returns an entry carrying the component name, e.g. logs.With("approval").
func With(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}
