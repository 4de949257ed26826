// Package xlog is the thinnest possible wrapper over the standard log
// package. niceyeti-tabular never reaches for a structured logging
// library -- server.go calls log.Println and fmt.Printf directly at call
// sites -- so this module keeps that register instead of introducing one.
// The only addition is a named Fatal path so that the
// fatal error kinds of the design (xerrors.ErrInvariant,
// ErrResourceExhaustion, ErrConfiguration) have one place that prints a
// diagnostic and calls os.Exit, instead of each call site doing its own
// log.Fatalf.
package xlog

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	std.Printf("INFO  "+format, args...)
}

// Warn logs a recoverable problem (a numeric-degenerate fallback, a
// dropped telemetry sample, etc).
func Warn(format string, args ...interface{}) {
	std.Printf("WARN  "+format, args...)
}

// Fatal logs err as a fatal diagnostic and terminates the process with a
// non-zero exit code, per the design's "Exit codes / errors".
func Fatal(err error) {
	std.Printf("FATAL %v", err)
	os.Exit(1)
}

// Fatalf formats and terminates, for call sites that don't already have
// an error value.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
