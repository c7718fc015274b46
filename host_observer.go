package unitmod

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// RegisterObserver adds an observer for the given event types, or for all
// events when none are given.
func (h *Host) RegisterObserver(observer Observer, eventTypes ...string) error {
	h.observerMu.Lock()
	defer h.observerMu.Unlock()

	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	h.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}

	h.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer. It is a no-op for unknown observers.
func (h *Host) UnregisterObserver(observer Observer) error {
	h.observerMu.Lock()
	defer h.observerMu.Unlock()

	if _, exists := h.observers[observer.ObserverID()]; exists {
		delete(h.observers, observer.ObserverID())
		h.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}
	return nil
}

// NotifyObservers validates the event and delivers it to each interested
// observer on its own goroutine, or inline when ctx carries
// WithSynchronousDelivery. Observer errors and panics are logged.
func (h *Host) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		h.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	h.observerMu.RLock()
	defer h.observerMu.RUnlock()

	for _, registration := range h.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}

		if IsSynchronousDelivery(ctx) {
			h.deliver(ctx, registration.observer, event)
			continue
		}
		go h.deliver(ctx, registration.observer, event)
	}
	return nil
}

func (h *Host) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		h.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers describes the registered observers.
func (h *Host) GetObservers() []ObserverInfo {
	h.observerMu.RLock()
	defer h.observerMu.RUnlock()

	info := make([]ObserverInfo, 0, len(h.observers))
	for _, registration := range h.observers {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}
		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}
	return info
}

func (h *Host) emitEvent(eventType string, data any) {
	event := NewCloudEvent(eventType, h.source, data)
	ctx := context.Background()
	if h.syncEvents {
		ctx = WithSynchronousDelivery(ctx)
	}
	if err := h.NotifyObservers(ctx, event); err != nil {
		h.logger.Error("Failed to notify observers", "event", eventType, "error", err)
	}
}

var _ Subject = (*Host)(nil)
