package feeders

import "strings"

// ArgsFeeder parses insmod-style "unit.param=value" arguments. When
// DefaultUnit is set, a bare "param=value" applies to that unit.
type ArgsFeeder struct {
	Args        []string
	DefaultUnit string
}

// NewArgsFeeder creates an ArgsFeeder over args.
func NewArgsFeeder(defaultUnit string, args []string) *ArgsFeeder {
	return &ArgsFeeder{Args: args, DefaultUnit: defaultUnit}
}

// Feed implements Feeder.
func (f *ArgsFeeder) Feed(o Overrides) error {
	for _, arg := range f.Args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return wrapArgError(arg, "missing '='")
		}
		key = strings.TrimSpace(key)
		unit, param, dotted := strings.Cut(key, ".")
		if !dotted {
			if f.DefaultUnit == "" {
				return wrapArgError(arg, ErrMissingUnit.Error())
			}
			unit, param = f.DefaultUnit, key
		}
		if unit == "" || param == "" {
			return wrapArgError(arg, "empty unit or parameter name")
		}
		o.Set(unit, param, unquote(value))
	}
	return nil
}

// unquote strips one pair of matching double quotes, as a shell would leave
// them in whom="My Mom".
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
