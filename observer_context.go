package unitmod

import "context"

type syncDeliveryKey struct{}

// WithSynchronousDelivery asks NotifyObservers to call observers inline, in
// registration-map order, before it returns.
func WithSynchronousDelivery(ctx context.Context) context.Context {
	return context.WithValue(ctx, syncDeliveryKey{}, true)
}

// IsSynchronousDelivery reports whether ctx requests inline delivery.
func IsSynchronousDelivery(ctx context.Context) bool {
	v, _ := ctx.Value(syncDeliveryKey{}).(bool)
	return v
}
