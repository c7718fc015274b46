// Package unitmod hosts loadable units: components that are registered with a
// long-lived host, initialized once, and later cleaned up exactly once. Each
// unit owns a fixed set of typed, lock-guarded parameters that operators can
// read and, where permitted, write while the unit is loaded.
//
// Basic usage:
//
//	host := unitmod.NewHost(unitmod.WithSink(ring))
//	h, err := host.Load(ctx, unitmod.UnitSpec{
//		Descriptor: unitmod.NewDescriptor("hello_params", "d0u9", "GPL v2", "Greets someone"),
//		Params: []unitmod.ParamDef{
//			unitmod.IntParam("howmany", 3, 0o644, "How many greetings"),
//			unitmod.StringParam("whom", "Mom", 0o644, "Who to greet"),
//		},
//		Unit: &Greeter{},
//	}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Unload()
package unitmod

// Payload is the opaque state a unit owns between a successful Init and its
// Cleanup. It may be nil when the unit holds no resources.
type Payload any

// Unit is implemented by every loadable unit.
//
// The host calls Init once. If Init succeeds the host later calls Cleanup
// exactly once with the payload Init returned; if Init fails Cleanup is never
// called, so Init must release anything it acquired before returning an error.
// The host never runs Init and Cleanup concurrently for the same unit.
type Unit interface {
	// Init prepares the unit. name is the unit's registered name and this is
	// a handle to the unit's own parameters and logger. Init should read its
	// parameters with a single Params().View call.
	Init(name string, this *ThisUnit) (Payload, error)

	// Cleanup releases the payload. It cannot fail; problems are logged. It
	// must finish releasing before it returns.
	Cleanup(p Payload)
}

// ThisUnit is a unit's handle to itself while it is loaded.
type ThisUnit struct {
	name   string
	desc   ModuleDescriptor
	params *Store
	logger Logger
}

// NewThisUnit builds a unit handle outside a Host, for driving a unit's Init
// and Cleanup directly in tests.
func NewThisUnit(desc ModuleDescriptor, params *Store, logger Logger) *ThisUnit {
	return &ThisUnit{name: desc.Name, desc: desc, params: params, logger: logger}
}

// Name returns the registered name.
func (t *ThisUnit) Name() string {
	return t.name
}

// Descriptor returns the descriptor the unit was registered with.
func (t *ThisUnit) Descriptor() ModuleDescriptor {
	return t.desc
}

// Params returns the unit's parameter store.
func (t *ThisUnit) Params() *Store {
	return t.params
}

// Logger returns a logger tagged with the unit's name.
func (t *ThisUnit) Logger() Logger {
	return t.logger
}

// UnitSpec is everything the host needs to register and load a unit.
type UnitSpec struct {
	Descriptor ModuleDescriptor
	Params     []ParamDef
	Unit       Unit
}

// UnitFunc adapts a pair of functions to the Unit interface.
type UnitFunc struct {
	InitFunc    func(name string, this *ThisUnit) (Payload, error)
	CleanupFunc func(p Payload)
}

func (f UnitFunc) Init(name string, this *ThisUnit) (Payload, error) {
	if f.InitFunc == nil {
		return nil, nil
	}
	return f.InitFunc(name, this)
}

func (f UnitFunc) Cleanup(p Payload) {
	if f.CleanupFunc != nil {
		f.CleanupFunc(p)
	}
}
