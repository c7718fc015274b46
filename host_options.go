package unitmod

import "github.com/GoCodeAlone/unitmod/klog"

// HostOption configures a Host.
type HostOption func(*Host)

// WithSink sets the log sink units and the host write to. Defaults to a
// klog.Ring of klog.DefaultCapacity records.
func WithSink(sink klog.Sink) HostOption {
	return func(h *Host) {
		if sink != nil {
			h.sink = sink
		}
	}
}

// WithMetrics records host activity in m.
func WithMetrics(m *Metrics) HostOption {
	return func(h *Host) {
		h.metrics = m
	}
}

// WithSource sets the CloudEvents source and the log tag of host messages.
// Defaults to "host".
func WithSource(source string) HostOption {
	return func(h *Host) {
		if source != "" {
			h.source = source
		}
	}
}

// WithSynchronousEvents delivers lifecycle events to observers before the
// operation that raised them returns.
func WithSynchronousEvents() HostOption {
	return func(h *Host) {
		h.syncEvents = true
	}
}
