// Package util provides the leveled log helpers shared by the linetrace packages.
//
// Output goes through the standard library logger, so main decides the
// destination and flags once (stderr, date, time, short file).
package util

import (
	"fmt"
	"log"
	"sync/atomic"
)

var debug atomic.Bool

// SetDebug turns debug output on or off.
func SetDebug(on bool) {
	debug.Store(on)
}

// DebugEnabled reports whether Debug messages are printed.
func DebugEnabled() bool {
	return debug.Load()
}

// Info prints general information messages.
func Info(msg string, args ...any) {
	_ = log.Output(2, "[INFO] "+fmt.Sprintf(msg, args...))
}

// Error prints error messages.
func Error(msg string, args ...any) {
	_ = log.Output(2, "[ERROR] "+fmt.Sprintf(msg, args...))
}

// Debug prints diagnostics when debug output is enabled.
func Debug(msg string, args ...any) {
	if !debug.Load() {
		return
	}
	_ = log.Output(2, "[DEBUG] "+fmt.Sprintf(msg, args...))
}
