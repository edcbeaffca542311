// Package logger provides the console logger used by the zxscan command.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/ericlevine/zxscan"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// Console writes log lines to stdout, or stderr for warnings and errors.
type Console struct {
	level     zxscan.LogLevel
	component string
	color     bool
	out       io.Writer
	errOut    io.Writer
}

// NewConsole creates a console logger with the specified level. Color output
// is enabled when stdout is a terminal.
func NewConsole(level zxscan.LogLevel) *Console {
	return &Console{
		level:  level,
		color:  isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// NewWriter creates an uncoloured logger writing to out and errOut.
func NewWriter(level zxscan.LogLevel, out, errOut io.Writer) *Console {
	return &Console{level: level, out: out, errOut: errOut}
}

// New returns a console logger, or a discarding one for LevelQuiet.
func New(level zxscan.LogLevel) zxscan.Logger {
	if level >= zxscan.LevelQuiet {
		return zxscan.NopLogger{}
	}
	return NewConsole(level)
}

func (l *Console) Debug(msg string, args ...interface{}) {
	l.log(zxscan.LevelDebug, msg, args...)
}

func (l *Console) Info(msg string, args ...interface{}) {
	l.log(zxscan.LevelInfo, msg, args...)
}

func (l *Console) Warn(msg string, args ...interface{}) {
	l.log(zxscan.LevelWarn, msg, args...)
}

func (l *Console) Error(msg string, args ...interface{}) {
	l.log(zxscan.LevelError, msg, args...)
}

// WithComponent returns a logger that prefixes lines with component.
func (l *Console) WithComponent(component string) zxscan.Logger {
	cp := *l
	cp.component = component
	return &cp
}

// Level returns the minimum level written.
func (l *Console) Level() zxscan.LogLevel {
	return l.level
}

func (l *Console) log(level zxscan.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	translated := l10n.F(msg, args...)

	output := translated
	if l.component != "" {
		if l.color {
			output = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, translated)
		} else {
			output = fmt.Sprintf("[%s] %s", l.component, translated)
		}
	}

	if l.color {
		switch level {
		case zxscan.LevelDebug:
			output = colorGray + output + colorReset
		case zxscan.LevelWarn:
			output = colorYellow + output + colorReset
		case zxscan.LevelError:
			output = colorRed + output + colorReset
		}
	}

	if level >= zxscan.LevelWarn {
		fmt.Fprintln(l.errOut, output)
	} else {
		fmt.Fprintln(l.out, output)
	}
}
