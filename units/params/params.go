// Package params greets someone a configurable number of times. Both
// parameters are world-readable and owner-writable.
package params

import (
	"fmt"

	"github.com/GoCodeAlone/unitmod"
)

const (
	Name = "hello_params"

	ParamHowMany = "howmany"
	ParamWhom    = "whom"
)

// Spec returns the unit's registration spec.
func Spec() unitmod.UnitSpec {
	return unitmod.UnitSpec{
		Descriptor: unitmod.NewDescriptor(Name, "d0u9", "GPL v2", "A hello world example with parameters"),
		Params: []unitmod.ParamDef{
			unitmod.IntParam(ParamHowMany, 3, 0o644, "How many times string will be printed"),
			unitmod.StringParam(ParamWhom, "Mom", 0o644, "What string to be printed"),
		},
		Unit: &Unit{},
	}
}

// Unit prints "<i> Hello, <whom>" howmany times on load.
type Unit struct{}

type payload struct {
	log unitmod.Logger
}

// Init reads both parameters under a single lock acquisition, then logs.
// A whom value that is not valid text aborts the load.
func (u *Unit) Init(name string, this *unitmod.ThisUnit) (unitmod.Payload, error) {
	log := this.Logger()
	log.Info("Hello world!")

	var howMany int64
	var whom string
	err := this.Params().View(func(r unitmod.ParamReader) error {
		var err error
		if howMany, err = r.Int(ParamHowMany); err != nil {
			return err
		}
		whom, err = r.Text(ParamWhom)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range howMany {
		log.Info(fmt.Sprintf("%d Hello, %s", i, whom))
	}
	return &payload{log: log}, nil
}

func (u *Unit) Cleanup(p unitmod.Payload) {
	if pl, ok := p.(*payload); ok {
		pl.log.Info("Bye world!")
	}
}
