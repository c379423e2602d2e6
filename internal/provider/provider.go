// internal/provider/provider.go
package provider

import (
	"context"
	"encoding/json"

	"mobipay-gateway/internal/domain"
)

// Gateway is the outbound contract to the payment aggregator. The real
// provider is an opaque remote REST API; implementations map its
// responses onto local statuses and the error taxonomy (GatewayError for
// explicit rejections, NetworkError for transport failure).
type Gateway interface {
	// SubmitPayment initiates an STK push for a C2B payment.
	SubmitPayment(ctx context.Context, p *domain.NormalizedPayment) (*SubmitResult, error)

	// SubmitWithdrawal initiates a B2C payout to a mobile wallet.
	SubmitWithdrawal(ctx context.Context, p *domain.NormalizedPayment) (*SubmitResult, error)

	// QueryStatus fetches the provider's view of a transaction. Returns
	// domain.ErrNotFound when the provider has no record, in which case
	// the caller falls back to the local ledger.
	QueryStatus(ctx context.Context, reference string) (*StatusResult, error)

	// QueryFees fetches the provider's charge estimate for an amount.
	// Best-effort: callers fall back to the local formula on failure.
	QueryFees(ctx context.Context, amount string) (json.RawMessage, error)

	// Ping is a best-effort connectivity probe for health reporting.
	Ping(ctx context.Context) error
}

// SubmitResult is the provider's acknowledgement of a submission.
// Delivery is asynchronous, so InitialStatus is normally non-terminal.
type SubmitResult struct {
	ProviderRef   string
	InitialStatus domain.TransactionStatus
	Message       string
	Raw           json.RawMessage
}

// StatusResult is the provider's answer to a status query.
type StatusResult struct {
	Status      domain.TransactionStatus
	ProviderRef string
	Amount      string
	PhoneNumber string
	Raw         json.RawMessage
}
