package unitmod

import "github.com/GoCodeAlone/unitmod/klog"

// Logger is the structured logging interface handed to units and used by the
// host. Arguments are key-value pairs:
//
//	logger.Info("Unit loaded", "unit", "hello_world", "params", 2)
//
// *klog.Logger implements it on top of the host log sink, and the shape is
// compatible with slog, zerolog wrappers and similar libraries.
type Logger interface {
	// Info logs normal lifecycle events such as a unit loading.
	Info(msg string, args ...any)

	// Error logs failures that the host recovers from, such as a panic in a
	// unit's Cleanup.
	Error(msg string, args ...any)

	// Warn logs unusual but tolerated conditions, such as an unknown
	// parameter override.
	Warn(msg string, args ...any)

	// Debug logs diagnostic detail.
	Debug(msg string, args ...any)
}

var _ Logger = (*klog.Logger)(nil)
