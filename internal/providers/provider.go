package providers

import (
	"context"
	"fmt"
)

// Provider creates payment intents with an external payment service. The
// returned URI is opaque to the rest of the service; it is only ever rendered
// as a scannable code on the checkout page.
//
// Selection between the real and mock variants happens once at startup and is
// never re-evaluated per request.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, description string, orderRef string) (providerURI string, err error)
}

// ProviderError carries the provider's status and message for a failed call.
// Callers map it to a 5xx response; the order is never partially created.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider error (status %d): %s: %v", e.Provider, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
