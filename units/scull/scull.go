// Package scull is a memory-backed storage unit. On load it allocates a
// quantum-set table sized by its read-only parameters; the table is the
// unit's payload and is released on unload. It exposes no I/O.
package scull

import (
	"fmt"

	"github.com/GoCodeAlone/unitmod"
)

const (
	Name = "scull_basic"

	ParamQuantum = "quantum"
	ParamQset    = "qset"

	DefaultQuantum = 4000
	DefaultQset    = 1000

	// Upper bounds for load-time overrides. Both are checked before their
	// product, so the product cannot overflow int64.
	MaxQuantum  = 1 << 20
	MaxQset     = 1 << 16
	MaxCapacity = 1 << 30
)

// Spec returns the unit's registration spec.
func Spec() unitmod.UnitSpec {
	return unitmod.UnitSpec{
		Descriptor: unitmod.NewDescriptor(Name, "d0u9", "GPL v2", "A simple memory based storage device"),
		Params: []unitmod.ParamDef{
			unitmod.IntParam(ParamQuantum, DefaultQuantum, 0o444, "Bytes per quantum"),
			unitmod.IntParam(ParamQset, DefaultQset, 0o444, "Quanta per set"),
		},
		Unit: &Unit{},
	}
}

// Device is the storage owned by a loaded scull unit.
type Device struct {
	Quantum int
	Qset    int

	// data holds one slot per quantum; slots are allocated on first use.
	data [][]byte
	log  unitmod.Logger
}

// Capacity returns the number of bytes one quantum set can hold.
func (d *Device) Capacity() int {
	return d.Quantum * d.Qset
}

// Slots returns the number of quantum slots, zero once released.
func (d *Device) Slots() int {
	return len(d.data)
}

// QuantumAt returns the i-th quantum, allocating it if needed.
func (d *Device) QuantumAt(i int) ([]byte, error) {
	if i < 0 || i >= len(d.data) {
		return nil, fmt.Errorf("quantum %d out of range [0,%d)", i, len(d.data))
	}
	if d.data[i] == nil {
		d.data[i] = make([]byte, d.Quantum)
	}
	return d.data[i], nil
}

func (d *Device) release() {
	for i := range d.data {
		d.data[i] = nil
	}
	d.data = nil
}

// Unit is the scull storage unit.
type Unit struct{}

func (u *Unit) Init(name string, this *unitmod.ThisUnit) (unitmod.Payload, error) {
	var quantum, qset int64
	err := this.Params().View(func(r unitmod.ParamReader) error {
		var err error
		if quantum, err = r.Int(ParamQuantum); err != nil {
			return err
		}
		qset, err = r.Int(ParamQset)
		return err
	})
	if err != nil {
		return nil, err
	}
	if quantum <= 0 || qset <= 0 {
		return nil, fmt.Errorf("%w: quantum=%d qset=%d must be positive", unitmod.ErrInvalidValue, quantum, qset)
	}
	if quantum > MaxQuantum || qset > MaxQset {
		return nil, fmt.Errorf("%w: quantum=%d qset=%d exceeds limits %d/%d", unitmod.ErrInvalidValue, quantum, qset, MaxQuantum, MaxQset)
	}
	if quantum*qset > MaxCapacity {
		return nil, fmt.Errorf("%w: capacity %d exceeds %d bytes", unitmod.ErrInvalidValue, quantum*qset, MaxCapacity)
	}

	dev := &Device{
		Quantum: int(quantum),
		Qset:    int(qset),
		data:    make([][]byte, qset),
		log:     this.Logger(),
	}
	this.Logger().Info("Storage ready", "quantum", dev.Quantum, "qset", dev.Qset)
	return dev, nil
}

func (u *Unit) Cleanup(p unitmod.Payload) {
	dev, ok := p.(*Device)
	if !ok {
		return
	}
	dev.release()
	dev.log.Info("Storage released")
}
