package unitmod

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is notified of host events. Events follow the CloudEvents
// specification.
type Observer interface {
	// OnEvent handles one event. It runs on its own goroutine and should
	// return quickly.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject is implemented by anything observers can register with. The Host
// is the only Subject in this package.
type Subject interface {
	// RegisterObserver adds an observer. With no eventTypes the observer
	// receives every event.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers delivers an event to every interested observer without
	// waiting for them.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers describes the registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the host.
const (
	EventTypeUnitRegistered  = "com.unitmod.unit.registered"
	EventTypeUnitRejected    = "com.unitmod.unit.rejected"
	EventTypeUnitInitialized = "com.unitmod.unit.initialized"
	EventTypeUnitInitFailed  = "com.unitmod.unit.init_failed"
	EventTypeUnitUnloaded    = "com.unitmod.unit.unloaded"
	EventTypeParamChanged    = "com.unitmod.param.changed"
)

// UnitEventData is the data of unit lifecycle events.
type UnitEventData struct {
	Unit    string `json:"unit"`
	ID      string `json:"id,omitempty"`
	License string `json:"license,omitempty"`
	State   string `json:"state,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ParamEventData is the data of EventTypeParamChanged.
type ParamEventData struct {
	Unit  string `json:"unit"`
	Param string `json:"param"`
	Value string `json:"value,omitempty"`
}

// FunctionalObserver wraps a function as an Observer.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that calls handler for every
// event it receives.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
