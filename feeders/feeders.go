// Package feeders gathers load-time parameter overrides from command-line
// arguments, YAML or TOML files and the environment.
package feeders

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Overrides maps unit name to parameter name to override text.
type Overrides map[string]map[string]string

// Set records one override, replacing any earlier value.
func (o Overrides) Set(unit, param, value string) {
	m, ok := o[unit]
	if !ok {
		m = make(map[string]string)
		o[unit] = m
	}
	m[param] = value
}

// For returns a copy of the overrides for one unit, or nil if there are none.
func (o Overrides) For(unit string) map[string]string {
	src, ok := o[unit]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Merge copies every override in other into o; other wins on conflict.
func (o Overrides) Merge(other Overrides) {
	for unit, params := range other {
		for param, value := range params {
			o.Set(unit, param, value)
		}
	}
}

// Feeder adds overrides from one source.
type Feeder interface {
	Feed(Overrides) error
}

// Load runs the feeders in order. Later feeders override earlier ones.
func Load(feeders ...Feeder) (Overrides, error) {
	out := make(Overrides)
	for _, f := range feeders {
		if err := f.Feed(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ForFile returns a feeder for path chosen by its extension.
func ForFile(path string) (Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYamlFeeder(path), nil
	case ".toml":
		return NewTomlFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// feedTree copies a decoded unit -> param -> scalar document into o.
func feedTree(o Overrides, tree map[string]map[string]any) error {
	for unit, params := range tree {
		for param, raw := range params {
			text, err := scalarText(raw)
			if err != nil {
				return wrapValueError(unit, param, raw)
			}
			o.Set(unit, param, text)
		}
	}
	return nil
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", nil
	default:
		return "", ErrUnsupportedValue
	}
}
