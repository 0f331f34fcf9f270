// Package diag is a small, timestamp-and-location logger in the style of
// realy.mleku.dev/lol: leveled, colorized, and backed by go-spew for
// structured dumps. It exists to give cmd/pylit2pickle's --debug flag and
// pylit.DiagLogger something sharper than fmt.Println to report through.
package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// Level selects which messages a Logger emits.
type Level int32

const (
	Off Level = iota
	Error
	Info
	Debug
	Trace
)

var levelNames = [...]string{Off: "off", Error: "ERR", Info: "INF", Debug: "DBG", Trace: "TRC"}

var levelColor = [...]func(a ...interface{}) string{
	Off:   func(a ...interface{}) string { return "" },
	Error: color.New(color.FgHiRed).Sprint,
	Info:  color.New(color.FgHiGreen).Sprint,
	Debug: color.New(color.FgHiBlue).Sprint,
	Trace: color.New(color.FgHiMagenta).Sprint,
}

var timeColor = color.New(color.FgBlue).Sprint

// Logger writes leveled diagnostics to w, filtering anything above level.
// It implements pylit.DiagLogger via Diag, which logs at Debug.
type Logger struct {
	level atomic.Int32
	w     io.Writer
}

// New returns a Logger writing to w at the given level.
func New(level Level, w io.Writer) *Logger {
	l := &Logger{w: w}
	l.level.Store(int32(level))
	return l
}

// NewStderr returns a Logger writing colorized output to os.Stderr.
func NewStderr(level Level) *Logger {
	return New(level, os.Stderr)
}

// SetLevel changes the active level, safe for concurrent use.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) enabled(level Level) bool {
	return Level(l.level.Load()) >= level
}

func (l *Logger) printf(level Level, format string, a ...interface{}) {
	if !l.enabled(level) {
		return
	}
	fmt.Fprintf(l.w, "%s%s %s %s\n",
		timeColor(time.Now().UTC().Format("15:04:05.000000")),
		levelColor[level](" "+levelNames[level]+" "),
		fmt.Sprintf(format, a...),
		timeColor(location(3)),
	)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, a ...interface{}) { l.printf(Error, format, a...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, a ...interface{}) { l.printf(Info, format, a...) }

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, a ...interface{}) { l.printf(Debug, format, a...) }

// Diag implements pylit.DiagLogger: every diagnostic the transcoder reports
// is logged at Debug level, since it describes recoverable parse detail
// rather than a hard failure of the surrounding program.
func (l *Logger) Diag(msg string) { l.printf(Debug, "%s", msg) }

// Dump writes a spew.Sdump of v under label, gated on Trace — the verbose
// escape hatch for inspecting decoded values during --verify.
func (l *Logger) Dump(label string, v interface{}) {
	if !l.enabled(Trace) {
		return
	}
	l.printf(Trace, "%s:\n%s", label, spew.Sdump(v))
}

func location(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
