// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package rlog is a small structured-logging helper used throughout relink,
// modeled on the leveled-logger-plus-Helper shape the teacher library keeps
// under its own "log" subpackage. It replaces a process-wide debug-print
// flag with an injected sink: every parser, model, and translator takes a
// *Helper instead of reaching for a package-level boolean.
package rlog

import (
	"fmt"
	"io"
	"os"
)

// Level is a log severity.
type Level int

// Severity levels, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every leveled log call is routed through.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes "LEVEL msg" lines to an io.Writer.
type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes each entry as a single line to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (s *stdLogger) Log(level Level, msg string) error {
	_, err := fmt.Fprintf(s.w, "%s %s\n", level, msg)
	return err
}

// filter wraps a Logger and drops entries below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filtering Logger built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filtered Logger passes through.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with a level floor; entries below the configured
// minimum are silently dropped.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, msg)
}

// Helper adds printf-style leveled convenience methods on top of a Logger,
// the object every model and translator in relink actually holds a
// reference to.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log(LevelDebug, format, args...)
}

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.log(LevelInfo, format, args...)
}

// Warnf logs at LevelWarn. This is the sink every non-fatal conversion
// warning (title truncation, an odd dumpinfo field, a missing-but-optional
// directory) is routed through.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log(LevelWarn, format, args...)
}

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log(LevelError, format, args...)
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, fmt.Sprintf(format, args...))
}

// Discard returns a Helper whose output is dropped, for callers (tests,
// library consumers that don't want stderr chatter) that don't supply a
// logger.
func Discard() *Helper {
	return NewHelper(nil)
}

// Default returns the engine's default Helper: everything warning-level and
// above goes to stderr, matching the teacher's file.go default of
// stdout-filtered-at-error, but routed to stderr per spec §7's "Warnings are
// emitted to a sink the caller configures (stderr by default)".
func Default() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelWarn)))
}
