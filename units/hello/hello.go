// Package hello is the smallest possible unit: it greets on load and says
// goodbye on unload.
package hello

import "github.com/GoCodeAlone/unitmod"

const Name = "hello_world"

// Spec returns the unit's registration spec.
func Spec() unitmod.UnitSpec {
	return unitmod.UnitSpec{
		Descriptor: unitmod.NewDescriptor(Name, "Douglas Su", "GPL v2", "A simple hello world example"),
		Unit:       &Unit{},
	}
}

// Unit holds no resources.
type Unit struct{}

type payload struct {
	log unitmod.Logger
}

func (u *Unit) Init(name string, this *unitmod.ThisUnit) (unitmod.Payload, error) {
	this.Logger().Info("Hello world!")
	return &payload{log: this.Logger()}, nil
}

func (u *Unit) Cleanup(p unitmod.Payload) {
	if pl, ok := p.(*payload); ok {
		pl.log.Info("Bye world!")
	}
}
