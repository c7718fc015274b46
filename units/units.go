// Package units catalogues the units built into the host binary.
package units

import (
	"sort"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/units/hello"
	"github.com/GoCodeAlone/unitmod/units/params"
	"github.com/GoCodeAlone/unitmod/units/scull"
)

// Factory returns a fresh spec for one unit.
type Factory func() unitmod.UnitSpec

// Builtin returns the built-in units keyed by registered name.
func Builtin() map[string]Factory {
	return map[string]Factory{
		hello.Name:  hello.Spec,
		params.Name: params.Spec,
		scull.Name:  scull.Spec,
	}
}

// Names returns the built-in unit names in sorted order.
func Names() []string {
	b := Builtin()
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the spec for name, if it is built in.
func Lookup(name string) (unitmod.UnitSpec, bool) {
	f, ok := Builtin()[name]
	if !ok {
		return unitmod.UnitSpec{}, false
	}
	return f(), true
}
