package mock

import (
	"context"
	"fmt"
)

// Adapter is a deterministic stand-in for a real payment provider. It never
// performs I/O; the URI embeds a prefix of the order reference so a payment
// code can be traced back to its order by eye.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) CreatePaymentIntent(_ context.Context, _ int64, _ string, orderRef string) (string, error) {
	ref := orderRef
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return fmt.Sprintf("weixin://wxpay/bizpayurl?pr=%s", ref), nil
}
