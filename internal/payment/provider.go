package payment

import "context"

// CheckoutRequest carries what a provider needs to open a hosted checkout.
// Amount is in centavos.
type CheckoutRequest struct {
	Code        string
	Description string
	Email       string
	Amount      int64
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Provider is an opaque payment collaborator. CreateCheckout is a hard
// dependency of the request that calls it; ParseWebhook extracts the
// reservation code from a provider-initiated confirmation.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(body []byte) (code string, paid bool, err error)
}
