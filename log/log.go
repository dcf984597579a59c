// Package log provides the leveled logger shared by the playback, session
// and presentation packages.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is implemented by every logger handed to pipeviz components.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Level is the minimum severity written by a logger.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

type logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New returns a logger writing info and error lines to stderr.
func New() Logger {
	return NewWithWriter(os.Stderr, LevelInfo)
}

// NewWithWriter returns a logger writing lines at or above level to out.
func NewWithWriter(out io.Writer, level Level) Logger {
	return &logger{out: out, level: level}
}

func (l *logger) write(level Level, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "["+tag+"]\t"+format+"\n", args...)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}
