package unitmod

import (
	"errors"
	"sync/atomic"

	"github.com/GoCodeAlone/unitmod/klog"
)

var errDependencyUnusable = errors.New("dependency unusable")

// recordingUnit counts lifecycle calls and optionally fails or panics in Init.
type recordingUnit struct {
	inits     atomic.Int32
	cleanups  atomic.Int32
	initErr   error
	initPanic any
	payload   Payload

	gotPayload  atomic.Value
	cleanupSeen func(initsSoFar int32)
}

func (u *recordingUnit) Init(name string, this *ThisUnit) (Payload, error) {
	u.inits.Add(1)
	if u.initPanic != nil {
		panic(u.initPanic)
	}
	if u.initErr != nil {
		return nil, u.initErr
	}
	this.Logger().Info("init", "unit", name)
	return u.payload, nil
}

func (u *recordingUnit) Cleanup(p Payload) {
	if u.cleanupSeen != nil {
		u.cleanupSeen(u.inits.Load())
	}
	u.cleanups.Add(1)
	if p != nil {
		u.gotPayload.Store(p)
	}
}

func newThis(name string, ring *klog.Ring, defs ...ParamDef) *ThisUnit {
	store, err := NewStore(defs...)
	if err != nil {
		panic(err)
	}
	return &ThisUnit{
		name:   name,
		desc:   NewDescriptor(name, "test", "GPL", ""),
		params: store,
		logger: klog.NewLogger(ring, name),
	}
}

func gplSpec(name string, unit Unit, params ...ParamDef) UnitSpec {
	return UnitSpec{
		Descriptor: NewDescriptor(name, "test", "GPL v2", "test unit"),
		Params:     params,
		Unit:       unit,
	}
}
