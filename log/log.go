// Package log provides loggers for the host and the command line tool.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the name of environment variable that enables debug logs.
const DebugEnv = "LV2_DEBUG"

var debug bool

// Logger is a global interface for lv2 loggers.
type Logger interface {
	logrus.FieldLogger
}

func init() {
	debug = Debug(os.Getenv(DebugEnv))
}

// Debug returns true if provided value enables debug logs.
func Debug(v string) bool {
	d, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return d
}

// GetLogger returns a new logger instance.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that writes nothing.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
