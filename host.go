package unitmod

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/GoCodeAlone/unitmod/klog"
	"github.com/GoCodeAlone/unitmod/lifecycle"
)

// Host loads units, keeps the registration table and owns the log sink.
// All methods are safe for concurrent use.
type Host struct {
	mu       sync.Mutex
	units    map[string]*Handle
	reserved map[string]bool
	order    []string
	closed   bool
	tainted  bool

	sink    klog.Sink
	logger  Logger
	source  string
	metrics *Metrics

	observerMu sync.RWMutex
	observers  map[string]*observerRegistration
	syncEvents bool
}

// NewHost creates an empty host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		units:     make(map[string]*Handle),
		reserved:  make(map[string]bool),
		source:    "host",
		observers: make(map[string]*observerRegistration),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sink == nil {
		h.sink = klog.NewRing(klog.DefaultCapacity)
	}
	h.logger = klog.NewLogger(h.sink, h.source)
	return h
}

// Handle is the host's record of a loaded unit. Unloading consumes it: after
// the first successful Unload every further call returns ErrUnitNotLoaded and
// the unit's Cleanup is not called again.
type Handle struct {
	id       string
	host     *Host
	desc     ModuleDescriptor
	params   *Store
	ctrl     *Controller
	loadedAt time.Time
}

func (hd *Handle) ID() string                   { return hd.id }
func (hd *Handle) Name() string                 { return hd.desc.Name }
func (hd *Handle) Descriptor() ModuleDescriptor { return hd.desc }
func (hd *Handle) Params() *Store               { return hd.params }
func (hd *Handle) State() lifecycle.State       { return hd.ctrl.State() }
func (hd *Handle) LoadedAt() time.Time          { return hd.loadedAt }

// Unload cleans the unit up and removes it from the host.
func (hd *Handle) Unload() error {
	return hd.host.unload(hd.desc.Name, hd)
}

// UnitInfo summarizes a loaded unit.
type UnitInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Author      string          `json:"author"`
	License     string          `json:"license"`
	Description string          `json:"description"`
	State       lifecycle.State `json:"state"`
	Params      int             `json:"params"`
	LoadedAt    time.Time       `json:"loadedAt"`
}

// Load registers a unit and runs its Init.
//
// The descriptor is validated first; an invalid name or unknown license fails
// with a *RegistrationError, as does a name that is already loaded or being
// loaded. overrides replace parameter defaults before the store is built
// (unknown names are logged and ignored). If Init fails the name is released
// and an *InitError is returned.
func (h *Host) Load(ctx context.Context, spec UnitSpec, overrides map[string]string) (*Handle, error) {
	if spec.Unit == nil {
		return nil, fmt.Errorf("load unit %q: %w", spec.Descriptor.Name, ErrNilUnit)
	}
	desc := spec.Descriptor
	name := desc.Name

	if err := desc.Validate(); err != nil {
		h.reject(name, err)
		return nil, err
	}
	if err := h.reserve(name); err != nil {
		h.reject(name, err)
		return nil, err
	}
	loaded := false
	defer func() {
		if !loaded {
			h.release(name)
		}
	}()

	defs, err := applyOverrides(spec.Params, overrides, func(param string) {
		h.logger.Warn("Unknown parameter ignored", "unit", name, "param", param)
	})
	if err != nil {
		h.reject(name, err)
		return nil, fmt.Errorf("load unit %q: %w", name, err)
	}
	store, err := NewStore(defs...)
	if err != nil {
		h.reject(name, err)
		return nil, fmt.Errorf("load unit %q: %w", name, err)
	}

	handle := &Handle{
		id:     newID(),
		host:   h,
		desc:   desc,
		params: store,
	}
	if err := ctx.Err(); err != nil {
		h.reject(name, err)
		return nil, fmt.Errorf("load unit %q: %w", name, err)
	}
	h.emitEvent(EventTypeUnitRegistered, UnitEventData{Unit: name, ID: handle.id, License: desc.License.String()})

	if desc.Taints() {
		h.logger.Warn("Loading proprietary unit taints host", "unit", name, "license", desc.LicenseText)
	}

	this := &ThisUnit{
		name:   name,
		desc:   desc,
		params: store,
		logger: klog.NewLogger(h.sink, name),
	}
	handle.ctrl = NewController(spec.Unit, this)

	start := time.Now()
	err = handle.ctrl.Init()
	h.metrics.initTook(name, time.Since(start))
	if err != nil {
		h.metrics.load(loadResultInitFailed)
		h.logger.Error("Unit init failed", "unit", name, "error", err)
		h.emitEvent(EventTypeUnitInitFailed, UnitEventData{Unit: name, ID: handle.id, State: string(handle.State()), Error: err.Error()})
		return nil, err
	}

	handle.loadedAt = time.Now()
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		handle.ctrl.Cleanup()
		h.metrics.load(loadResultRejected)
		h.logger.Warn("Host closed during init, unit cleaned up", "unit", name, "id", handle.id)
		h.emitEvent(EventTypeUnitUnloaded, UnitEventData{Unit: name, ID: handle.id, State: string(handle.State())})
		return nil, fmt.Errorf("load unit %q: %w", name, ErrHostClosed)
	}
	delete(h.reserved, name)
	h.units[name] = handle
	h.order = append(h.order, name)
	if desc.Taints() {
		h.tainted = true
	}
	h.mu.Unlock()
	loaded = true

	h.metrics.load(loadResultLoaded)
	h.logger.Info("Unit loaded", "unit", name, "id", handle.id, "params", store.Len())
	h.emitEvent(EventTypeUnitInitialized, UnitEventData{Unit: name, ID: handle.id, State: string(handle.State())})
	return handle, nil
}

func (h *Host) reserve(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("load unit %q: %w", name, ErrHostClosed)
	}
	if _, exists := h.units[name]; exists || h.reserved[name] {
		return &RegistrationError{Unit: name, Kind: ErrDuplicateName}
	}
	h.reserved[name] = true
	return nil
}

func (h *Host) release(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.reserved, name)
}

func (h *Host) reject(name string, err error) {
	h.metrics.load(loadResultRejected)
	h.logger.Error("Unit rejected", "unit", name, "error", err)
	h.emitEvent(EventTypeUnitRejected, UnitEventData{Unit: name, Error: err.Error()})
}

// Unload cleans up the named unit and removes it from the host.
func (h *Host) Unload(name string) error {
	return h.unload(name, nil)
}

// unload removes the unit from the table before running Cleanup, so a
// concurrent second unload finds nothing to do. The name stays reserved until
// Cleanup returns, so a new instance cannot initialize while the old one is
// still releasing. When want is set the table entry must be that handle.
func (h *Host) unload(name string, want *Handle) error {
	h.mu.Lock()
	handle, ok := h.units[name]
	if !ok || (want != nil && handle != want) {
		h.mu.Unlock()
		return fmt.Errorf("unload unit %q: %w", name, ErrUnitNotLoaded)
	}
	delete(h.units, name)
	h.reserved[name] = true
	h.order = slices.DeleteFunc(h.order, func(n string) bool { return n == name })
	h.mu.Unlock()

	handle.ctrl.Cleanup()
	h.release(name)
	h.metrics.unload()
	h.logger.Info("Unit unloaded", "unit", name, "id", handle.id)
	h.emitEvent(EventTypeUnitUnloaded, UnitEventData{Unit: name, ID: handle.id, State: string(handle.State())})
	return nil
}

// UnloadAll unloads every unit in reverse load order.
func (h *Host) UnloadAll(ctx context.Context) error {
	h.mu.Lock()
	order := slices.Clone(h.order)
	h.mu.Unlock()
	slices.Reverse(order)

	var errs []error
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := h.Unload(name); err != nil && !errors.Is(err, ErrUnitNotLoaded) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close refuses further loads and unloads everything.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return h.UnloadAll(ctx)
}

// Unit returns the handle of a loaded unit.
func (h *Host) Unit(name string) (*Handle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	handle, ok := h.units[name]
	return handle, ok
}

// Units describes the loaded units in load order.
func (h *Host) Units() []UnitInfo {
	h.mu.Lock()
	handles := make([]*Handle, 0, len(h.order))
	for _, name := range h.order {
		handles = append(handles, h.units[name])
	}
	h.mu.Unlock()

	out := make([]UnitInfo, 0, len(handles))
	for _, hd := range handles {
		out = append(out, UnitInfo{
			ID:          hd.id,
			Name:        hd.desc.Name,
			Author:      hd.desc.Author,
			License:     hd.desc.LicenseText,
			Description: hd.desc.Description,
			State:       hd.State(),
			Params:      hd.params.Len(),
			LoadedAt:    hd.loadedAt,
		})
	}
	return out
}

// Tainted reports whether a proprietary unit has been loaded.
func (h *Host) Tainted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tainted
}

// Sink returns the host log sink.
func (h *Host) Sink() klog.Sink {
	return h.sink
}

// Logger returns the host's own logger.
func (h *Host) Logger() Logger {
	return h.logger
}
