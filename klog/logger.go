package klog

import (
	"fmt"
	"strings"
)

// Logger adapts a Sink to the key/value logging style used across the host:
//
//	logger.Info("Unit loaded", "unit", "hello", "params", 2)
//
// is emitted as `Unit loaded unit=hello params=2`.
type Logger struct {
	sink   Sink
	source string
}

// NewLogger returns a Logger that tags every message with source.
func NewLogger(sink Sink, source string) *Logger {
	if sink == nil {
		sink = Discard
	}
	return &Logger{sink: sink, source: source}
}

// Source returns the tag attached to every message.
func (l *Logger) Source() string {
	return l.source
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(SeverityDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(SeverityInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(SeverityWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(SeverityError, msg, args) }

func (l *Logger) emit(sev Severity, msg string, args []any) {
	l.sink.Emit(l.source, sev, format(msg, args))
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 == len(args) {
			// odd trailing value
			fmt.Fprintf(&b, "!BADKEY=%v", args[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
	}
	return b.String()
}
