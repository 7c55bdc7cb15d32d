package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger used by the loader, cache and
// poster packages. It defaults to log.Printf and may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf carries per-file detail (cache hits, skipped files). It is muted
// until EnableDebug or SetDebugLogger is called.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the debug logger. Passing nil mutes it again.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}

// EnableDebug routes Debugf through the same sink as Logf.
func EnableDebug() {
	Debugf = func(format string, v ...interface{}) {
		Logf("debug: "+format, v...)
	}
}

// SetOutput points both loggers at w using the standard log flags.
func SetOutput(w io.Writer) {
	l := log.New(w, "", log.LstdFlags)
	Logf = l.Printf
}
