// Package klog is the host's logging sink. Units and the host emit
// severity-tagged messages into a bounded ring buffer that operators can read
// back, and every record can be forwarded to a zerolog logger for process
// output.
package klog

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Severity tags a log record.
type Severity int8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) zerologLevel() zerolog.Level {
	switch s {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Sink accepts log messages. Emit never fails; a sink that cannot record a
// message drops it.
type Sink interface {
	Emit(source string, sev Severity, msg string)
}

// Record is a single entry in the ring buffer.
type Record struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"time"`
	Severity Severity  `json:"-"`
	Level    string    `json:"level"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
}

// DefaultCapacity is the ring size used when NewRing is given a non-positive
// capacity.
const DefaultCapacity = 1024

// Ring is a fixed-capacity, concurrency-safe Sink. When full, the oldest
// records are overwritten.
type Ring struct {
	mu      sync.Mutex
	records []Record
	start   int
	count   int
	seq     uint64
	out     *zerolog.Logger
	now     func() time.Time
}

// Option configures a Ring.
type Option func(*Ring)

// WithOutput forwards every emitted record to the given zerolog logger.
func WithOutput(logger zerolog.Logger) Option {
	return func(r *Ring) {
		r.out = &logger
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Ring) {
		r.now = now
	}
}

// NewRing creates a ring buffer holding at most capacity records.
func NewRing(capacity int, opts ...Option) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Ring{
		records: make([]Record, capacity),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Emit appends a record. Invalid UTF-8 in msg is replaced so the buffer only
// ever holds printable text.
func (r *Ring) Emit(source string, sev Severity, msg string) {
	msg = strings.ToValidUTF8(strings.TrimRight(msg, "\n"), "�")

	r.mu.Lock()
	r.seq++
	rec := Record{
		Seq:      r.seq,
		Time:     r.now(),
		Severity: sev,
		Level:    sev.String(),
		Source:   source,
		Message:  msg,
	}
	idx := (r.start + r.count) % len(r.records)
	r.records[idx] = rec
	if r.count < len(r.records) {
		r.count++
	} else {
		r.start = (r.start + 1) % len(r.records)
	}
	out := r.out
	r.mu.Unlock()

	if out != nil {
		out.WithLevel(sev.zerologLevel()).
			Uint64("seq", rec.Seq).
			Str("source", source).
			Msg(msg)
	}
}

// Records returns a copy of every buffered record, oldest first.
func (r *Ring) Records() []Record {
	return r.Since(0)
}

// Since returns buffered records with a sequence number greater than seq.
func (r *Ring) Since(seq uint64) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, r.count)
	for i := 0; i < r.count; i++ {
		rec := r.records[(r.start+i)%len(r.records)]
		if rec.Seq > seq {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of buffered records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(string, Severity, string) {}
