// internal/domain/transaction.go
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string
type TransactionStatus string

const (
	KindC2B TransactionKind = "C2B" // customer payment via STK push
	KindB2C TransactionKind = "B2C" // wallet withdrawal / payout
)

const (
	StatusQueued     TransactionStatus = "QUEUED"
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusSuccess    TransactionStatus = "SUCCESS"
	StatusFailed     TransactionStatus = "FAILED"
	StatusUnknown    TransactionStatus = "UNKNOWN"
)

// IsTerminal reports whether a status can no longer change.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ParseStatus maps an arbitrary provider status string onto the local set.
func ParseStatus(s string) TransactionStatus {
	switch TransactionStatus(s) {
	case StatusQueued, StatusPending, StatusProcessing, StatusSuccess, StatusFailed:
		return TransactionStatus(s)
	}
	return StatusUnknown
}

// Transaction is one ledger record. Reference, kind, amount and phone
// number are fixed at creation; only status, providerResponse and
// lastCheckedAt mutate afterwards.
type Transaction struct {
	Reference        string            `json:"reference"`
	Kind             TransactionKind   `json:"kind"`
	Status           TransactionStatus `json:"status"`
	Amount           decimal.Decimal   `json:"amount"`
	PhoneNumber      string            `json:"phoneNumber"`
	NetworkCode      string            `json:"networkCode,omitempty"`
	CustomerName     string            `json:"customerName,omitempty"`
	Description      string            `json:"description,omitempty"`
	ProviderRef      string            `json:"providerRef,omitempty"`
	ProviderResponse json.RawMessage   `json:"providerResponse,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastCheckedAt    *time.Time        `json:"lastCheckedAt,omitempty"`
}

// PaymentRequest is the inbound STK push (C2B) request body.
type PaymentRequest struct {
	PhoneNumber       string          `json:"phoneNumber"`
	Amount            json.RawMessage `json:"amount"`
	ExternalReference string          `json:"externalReference"`
	CustomerName      string          `json:"customerName"`
}

// WithdrawalRequest is the inbound B2C payout request body.
type WithdrawalRequest struct {
	PhoneNumber       string          `json:"phoneNumber"`
	Amount            json.RawMessage `json:"amount"`
	NetworkCode       string          `json:"networkCode"`
	Description       string          `json:"description"`
	ExternalReference string          `json:"externalReference"`
}

// NormalizedPayment is a validated payment ready for the ledger and the
// gateway adapter.
type NormalizedPayment struct {
	Reference    string
	Kind         TransactionKind
	PhoneNumber  string
	Amount       decimal.Decimal
	NetworkCode  string
	CustomerName string
	Description  string
}

// Normalize validates the request and produces the canonical payload.
// All failures surface as ValidationError before any state changes.
func (r *PaymentRequest) Normalize(bounds AmountBounds) (*NormalizedPayment, error) {
	phone, err := NormalizePhone(r.PhoneNumber)
	if err != nil {
		return nil, err
	}

	amount, err := ParseAmount(r.Amount, bounds)
	if err != nil {
		return nil, err
	}

	return &NormalizedPayment{
		Reference:    NewReference(KindC2B, r.ExternalReference),
		Kind:         KindC2B,
		PhoneNumber:  phone,
		Amount:       amount,
		CustomerName: r.CustomerName,
	}, nil
}

// Normalize validates the withdrawal request. allowedNetworks is the
// configured whitelist of telco network codes.
func (r *WithdrawalRequest) Normalize(bounds AmountBounds, allowedNetworks []string) (*NormalizedPayment, error) {
	phone, err := NormalizePhone(r.PhoneNumber)
	if err != nil {
		return nil, err
	}

	amount, err := ParseAmount(r.Amount, bounds)
	if err != nil {
		return nil, err
	}

	valid := false
	for _, code := range allowedNetworks {
		if r.NetworkCode == code {
			valid = true
			break
		}
	}
	if !valid {
		return nil, NewValidationError("networkCode", "invalid network code")
	}

	return &NormalizedPayment{
		Reference:   NewReference(KindB2C, r.ExternalReference),
		Kind:        KindB2C,
		PhoneNumber: phone,
		Amount:      amount,
		NetworkCode: r.NetworkCode,
		Description: r.Description,
	}, nil
}
