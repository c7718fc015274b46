package feeders

import (
	"os"
	"strings"
)

// DefaultEnvPrefix is the variable prefix EnvFeeder uses when none is set.
const DefaultEnvPrefix = "UNITMOD"

// EnvFeeder reads overrides from variables named PREFIX__UNIT__PARAM. Unit
// and parameter names are lower-cased.
type EnvFeeder struct {
	Prefix  string
	Environ func() []string

	verboseDebug bool
	logger       interface {
		Debug(msg string, args ...any)
	}
}

// NewEnvFeeder creates a new EnvFeeder that reads from the process environment
func NewEnvFeeder() *EnvFeeder {
	return &EnvFeeder{Prefix: DefaultEnvPrefix, Environ: os.Environ}
}

// SetVerboseDebug enables or disables verbose debug logging
func (f *EnvFeeder) SetVerboseDebug(enabled bool, logger interface{ Debug(msg string, args ...any) }) {
	f.verboseDebug = enabled
	f.logger = logger
}

func (f *EnvFeeder) debug(msg string, args ...any) {
	if f.verboseDebug && f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// Feed implements Feeder.
func (f *EnvFeeder) Feed(o Overrides) error {
	prefix := f.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	prefix += "__"
	environ := f.Environ
	if environ == nil {
		environ = os.Environ
	}

	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		unit, param, ok := strings.Cut(strings.TrimPrefix(key, prefix), "__")
		if !ok || unit == "" || param == "" || strings.Contains(param, "__") {
			f.debug("EnvFeeder: skipping malformed variable", "key", key)
			continue
		}
		unit, param = strings.ToLower(unit), strings.ToLower(param)
		f.debug("EnvFeeder: override", "unit", unit, "param", param)
		o.Set(unit, param, value)
	}
	return nil
}
