// Package logger provides a small leveled logger with colored terminal
// output, tagged by component category.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelColors = map[Level]*color.Color{
	DEBUG: color.New(color.FgCyan),
	INFO:  color.New(color.FgGreen),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed),
}

type Logger struct {
	mu  sync.Mutex
	out io.Writer
	min Level
}

func New() *Logger {
	return &Logger{out: os.Stdout, min: DEBUG}
}

// NewWithOutput is used by tests to capture output.
func NewWithOutput(out io.Writer, min Level) *Logger {
	return &Logger{out: out, min: min}
}

func (l *Logger) log(level Level, category, format string, args ...interface{}) {
	if level < l.min {
		return
	}

	ts := color.New(color.FgBlue).Sprint(time.Now().UTC().Format("15:04:05"))
	lv := levelColors[level].Sprintf("%-5s", levelNames[level])
	cat := levelColors[level].Sprintf("[%s]", strings.ToUpper(category))
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s %s %s\n", ts, lv, cat, msg)
}

func (l *Logger) Debug(category, format string, args ...interface{}) {
	l.log(DEBUG, category, format, args...)
}

func (l *Logger) Info(category, format string, args ...interface{}) {
	l.log(INFO, category, format, args...)
}

func (l *Logger) Warn(category, format string, args ...interface{}) {
	l.log(WARN, category, format, args...)
}

func (l *Logger) Error(category, format string, args ...interface{}) {
	l.log(ERROR, category, format, args...)
}
