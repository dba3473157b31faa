//go:build !(rp2040 || rp2350)

// Package logx is the node's logging front. Host builds route through logrus;
// MCU builds degrade to a minimal serial printer so the same call sites
// compile under TinyGo.
package logx

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// SetOutput redirects log output (tests use io.Discard).
func SetOutput(w io.Writer) { log.SetOutput(w) }

// SetDebug toggles debug-level output.
func SetDebug(on bool) {
	if on {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func Debugf(format string, a ...any) { log.Debugf(format, a...) }
func Infof(format string, a ...any)  { log.Infof(format, a...) }
func Warnf(format string, a ...any)  { log.Warnf(format, a...) }
func Errorf(format string, a ...any) { log.Errorf(format, a...) }
