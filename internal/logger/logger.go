// Package logger provides the shared logging interface for the access layer.
//
// Components report lifecycle events (commits, rollbacks, retry attempts,
// cache hits and misses) through a Logger so tests can capture and assert
// on the emitted lines.
package logger

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Ensure implementations satisfy the interface.
var _ Logger = (*standardLogger)(nil)
var _ Logger = (*nopLogger)(nil)
var _ Logger = (*CaptureLogger)(nil)

// Logger represents an interface for a shared logger.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// Nop is a Logger that discards everything.
var Nop Logger = &nopLogger{}

type nopLogger struct{}

func (n *nopLogger) Printf(format string, v ...interface{}) {}

func (n *nopLogger) Debugf(format string, v ...interface{}) {}

// standardLogger is a basic implementation of Logger based on log.Logger.
type standardLogger struct {
	logger  *log.Logger
	verbose bool
}

// NewStandardLogger returns a Logger writing timestamped lines to w.
// Debugf output is suppressed.
func NewStandardLogger(w io.Writer) Logger {
	return &standardLogger{logger: log.New(w, "", log.LstdFlags)}
}

// NewVerboseLogger is NewStandardLogger with Debugf output enabled.
func NewVerboseLogger(w io.Writer) Logger {
	return &standardLogger{logger: log.New(w, "", log.LstdFlags), verbose: true}
}

func (s *standardLogger) Printf(format string, v ...interface{}) {
	s.logger.Printf(format, v...)
}

func (s *standardLogger) Debugf(format string, v ...interface{}) {
	if s.verbose {
		s.logger.Printf(format, v...)
	}
}

// CaptureLogger records every formatted line for later inspection. It is
// safe for concurrent use and intended for tests.
type CaptureLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

func (c *CaptureLogger) Printf(format string, v ...interface{}) {
	c.append(format, v...)
}

func (c *CaptureLogger) Debugf(format string, v ...interface{}) {
	c.append(format, v...)
}

// Lines returns a copy of everything logged so far.
func (c *CaptureLogger) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CaptureLogger) append(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}
