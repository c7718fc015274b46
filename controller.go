package unitmod

import (
	"fmt"
	"sync"

	"github.com/GoCodeAlone/unitmod/lifecycle"
)

// Controller drives one unit through uninitialized -> active -> unloaded, or
// uninitialized -> failed. It owns the unit's payload while the unit is
// active.
type Controller struct {
	mu      sync.Mutex
	unit    Unit
	this    *ThisUnit
	machine *lifecycle.Machine
	payload Payload
}

// NewController returns a controller in the uninitialized state.
func NewController(unit Unit, this *ThisUnit) *Controller {
	return &Controller{
		unit:    unit,
		this:    this,
		machine: lifecycle.NewMachine(),
	}
}

// Init runs the unit's Init. On success the controller keeps the payload and
// becomes active. On failure, including a panic inside the unit, it becomes
// failed and returns an *InitError; no payload is kept.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state := c.machine.State(); state != lifecycle.StateUninitialized {
		return fmt.Errorf("%w: init called in state %s", lifecycle.ErrInvalidTransition, state)
	}

	payload, err := c.callInit()
	if err != nil {
		initErr := &InitError{Unit: c.this.name, Cause: err}
		_ = c.machine.Fail(initErr)
		return initErr
	}

	c.payload = payload
	return c.machine.Transition(lifecycle.StateActive)
}

func (c *Controller) callInit() (payload Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("%w: %v", ErrInitPanic, r)
		}
	}()
	return c.unit.Init(c.this.name, c.this)
}

// Cleanup hands the payload to the unit's Cleanup and marks the unit
// unloaded. It only acts on an active unit and reports whether it did. The
// unit's Cleanup has returned by the time Cleanup returns.
func (c *Controller) Cleanup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.Transition(lifecycle.StateUnloaded); err != nil {
		c.this.logger.Debug("Cleanup skipped", "unit", c.this.name, "state", c.machine.State())
		return false
	}

	payload := c.payload
	c.payload = nil

	defer func() {
		if r := recover(); r != nil {
			c.this.logger.Error("Unit cleanup panicked", "unit", c.this.name, "panic", r)
		}
	}()
	c.unit.Cleanup(payload)
	return true
}

// State returns the current lifecycle state.
func (c *Controller) State() lifecycle.State {
	return c.machine.State()
}

// Err returns the init failure, or nil unless the state is failed.
func (c *Controller) Err() error {
	return c.machine.Reason()
}

// History returns the transitions taken so far.
func (c *Controller) History() []lifecycle.Transition {
	return c.machine.History()
}
