package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for lifecycle package
var (
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrNilReason         = errors.New("failure reason cannot be nil")
)

// Transition records one state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Machine tracks the state of one unit. It is safe for concurrent use; the
// host still serializes Init and Cleanup for a given unit.
type Machine struct {
	mu      sync.RWMutex
	state   State
	reason  error
	history []Transition
	now     func() time.Time
}

// NewMachine returns a machine in StateUninitialized.
func NewMachine() *Machine {
	return &Machine{
		state: StateUninitialized,
		now:   time.Now,
	}
}

// Transition moves the machine to the given state.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

// Fail moves the machine to StateFailed and records why.
func (m *Machine) Fail(reason error) error {
	if reason == nil {
		return ErrNilReason
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionLocked(StateFailed); err != nil {
		return err
	}
	m.reason = reason
	return nil
}

func (m *Machine) transitionLocked(to State) error {
	if !CanTransition(m.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
	}
	m.history = append(m.history, Transition{From: m.state, To: to, At: m.now()})
	m.state = to
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reason returns the failure reason, or nil unless the state is StateFailed.
func (m *Machine) Reason() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reason
}

// History returns a copy of every transition taken so far.
func (m *Machine) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}
