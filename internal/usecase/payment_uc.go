// internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mobipay-gateway/config"
	"mobipay-gateway/internal/domain"
	"mobipay-gateway/internal/ledger"
	"mobipay-gateway/internal/provider"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentUsecase struct {
	store   *ledger.Store
	gateway provider.Gateway
	cfg     *config.Config
	logger  *zap.Logger
}

func NewPaymentUsecase(
	store *ledger.Store,
	gateway provider.Gateway,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
	}
}

// InitiatePayment validates an STK push request, records it in the
// ledger, and submits it to the provider. The ledger entry is created
// before the remote call and never rolled back on gateway failure: the
// provider may have accepted the request even if the response was lost,
// so the entry stays pending for a later status check to reconcile.
func (uc *PaymentUsecase) InitiatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.Transaction, string, error) {
	payload, err := req.Normalize(uc.bounds())
	if err != nil {
		return nil, "", err
	}
	return uc.submit(ctx, payload)
}

// InitiateWithdrawal validates a B2C payout request and submits it.
func (uc *PaymentUsecase) InitiateWithdrawal(ctx context.Context, req *domain.WithdrawalRequest) (*domain.Transaction, string, error) {
	payload, err := req.Normalize(uc.bounds(), uc.cfg.Provider.AllowedNetworkCodes())
	if err != nil {
		return nil, "", err
	}
	return uc.submit(ctx, payload)
}

func (uc *PaymentUsecase) submit(ctx context.Context, payload *domain.NormalizedPayment) (*domain.Transaction, string, error) {
	tx, created, err := uc.store.Create(&domain.Transaction{
		Reference:    payload.Reference,
		Kind:         payload.Kind,
		Status:       domain.StatusQueued,
		Amount:       payload.Amount,
		PhoneNumber:  payload.PhoneNumber,
		NetworkCode:  payload.NetworkCode,
		CustomerName: payload.CustomerName,
		Description:  payload.Description,
	})
	if err != nil {
		uc.logger.Warn("conflicting reference on create",
			zap.String("reference", payload.Reference),
			zap.String("kind", string(payload.Kind)))
		return nil, "", err
	}
	if !created {
		uc.logger.Info("idempotent replay, returning existing transaction",
			zap.String("reference", tx.Reference),
			zap.String("status", string(tx.Status)))
		return tx, "duplicate request, transaction already exists", nil
	}

	uc.logger.Info("submitting transaction to provider",
		zap.String("reference", payload.Reference),
		zap.String("kind", string(payload.Kind)),
		zap.String("phone_number", payload.PhoneNumber),
		zap.String("amount", payload.Amount.String()))

	// The remote call happens with no ledger lock held; the store is
	// only touched again once a response (or failure) is in hand.
	var result *provider.SubmitResult
	if payload.Kind == domain.KindB2C {
		result, err = uc.gateway.SubmitWithdrawal(ctx, payload)
	} else {
		result, err = uc.gateway.SubmitPayment(ctx, payload)
	}
	if err != nil {
		uc.logger.Error("provider submission failed",
			zap.String("reference", payload.Reference),
			zap.String("kind", string(payload.Kind)),
			zap.Error(err))
		uc.store.UpdateStatus(payload.Reference, domain.StatusPending, nil)
		return nil, "", err
	}

	uc.store.SetProviderRef(payload.Reference, result.ProviderRef)
	uc.store.UpdateStatus(payload.Reference, result.InitialStatus, result.Raw)

	tx, getErr := uc.store.Get(payload.Reference)
	if getErr != nil {
		// Deleted between update and read; reconstruct from what we know.
		tx = &domain.Transaction{
			Reference: payload.Reference,
			Kind:      payload.Kind,
			Status:    result.InitialStatus,
			Amount:    payload.Amount,
		}
	}

	message := result.Message
	if message == "" {
		message = "request accepted, awaiting confirmation"
	}
	return tx, message, nil
}

// CheckStatus resolves a transaction's current state. The provider is
// authoritative; its answer is merged into the ledger. When the provider
// has no record the cached ledger copy is returned, and only when both
// sides miss does the lookup fail with ErrNotFound.
func (uc *PaymentUsecase) CheckStatus(ctx context.Context, reference string) (*domain.Transaction, error) {
	result, err := uc.gateway.QueryStatus(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			local, localErr := uc.store.Get(reference)
			if localErr != nil {
				return nil, domain.ErrNotFound
			}
			uc.logger.Info("provider has no record, serving cached copy",
				zap.String("reference", reference),
				zap.String("status", string(local.Status)))
			return local, nil
		}

		// Logged with enough context for manual reconciliation; there is
		// no automated retry.
		uc.logger.Error("status query failed",
			zap.String("reference", reference),
			zap.Error(err))
		return nil, err
	}

	uc.store.SetProviderRef(reference, result.ProviderRef)
	uc.store.UpdateStatus(reference, result.Status, result.Raw)

	local, err := uc.store.Get(reference)
	if err != nil {
		// Known upstream but never recorded locally; synthesize a view
		// from the provider's answer.
		amount, _ := decimal.NewFromString(result.Amount)
		return &domain.Transaction{
			Reference:        reference,
			Status:           result.Status,
			Amount:           amount,
			PhoneNumber:      result.PhoneNumber,
			ProviderRef:      result.ProviderRef,
			ProviderResponse: result.Raw,
		}, nil
	}
	return local, nil
}

// ProcessCallback ingests the provider's asynchronous result for a
// transaction. Unknown references are a no-op.
func (uc *PaymentUsecase) ProcessCallback(ctx context.Context, reference string, payload []byte) error {
	var result struct {
		Status     string `json:"status"`
		Success    *bool  `json:"success"`
		Reference  string `json:"reference"`
		ResultCode *int   `json:"result_code"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.NewValidationError("payload", "callback payload is not valid JSON")
	}

	status := domain.ParseStatus(result.Status)
	if status == domain.StatusUnknown {
		switch {
		case result.Success != nil && *result.Success,
			result.ResultCode != nil && *result.ResultCode == 0:
			status = domain.StatusSuccess
		case result.Success != nil || result.ResultCode != nil:
			status = domain.StatusFailed
		}
	}

	uc.logger.Info("processing provider callback",
		zap.String("reference", reference),
		zap.String("status", string(status)))

	if result.Reference != "" {
		uc.store.SetProviderRef(reference, result.Reference)
	}
	uc.store.UpdateStatus(reference, status, payload)
	return nil
}

// ListTransactions returns a page of ledger records plus a stats
// snapshot over the whole ledger.
func (uc *PaymentUsecase) ListTransactions(filter ledger.Filter, page ledger.Page) ([]*domain.Transaction, int, ledger.Stats) {
	records, total := uc.store.List(filter, page)
	return records, total, uc.store.Stats()
}

// DeleteTransaction removes a record, reporting whether one existed.
func (uc *PaymentUsecase) DeleteTransaction(reference string) bool {
	removed := uc.store.Delete(reference)
	uc.logger.Info("transaction delete requested",
		zap.String("reference", reference),
		zap.Bool("removed", removed))
	return removed
}

// FeeEstimate is the fee quote for a prospective payment.
type FeeEstimate struct {
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	Total          decimal.Decimal `json:"total"`
	Rate           decimal.Decimal `json:"rate"`
	Floor          decimal.Decimal `json:"floor"`
	RemoteSchedule json.RawMessage `json:"remoteSchedule,omitempty"`
}

// EstimateFee computes max(floor, amount*rate) locally and attaches the
// provider's schedule when it is reachable. A failed schedule fetch is
// logged and omitted, never an error to the caller.
func (uc *PaymentUsecase) EstimateFee(ctx context.Context, rawAmount string) (*FeeEstimate, error) {
	amount, err := domain.ParseAmount(json.RawMessage(rawAmount), uc.bounds())
	if err != nil {
		return nil, err
	}

	fee := amount.Mul(uc.cfg.Fees.Rate)
	if fee.LessThan(uc.cfg.Fees.Floor) {
		fee = uc.cfg.Fees.Floor
	}

	estimate := &FeeEstimate{
		Amount: amount,
		Fee:    fee,
		Total:  amount.Add(fee),
		Rate:   uc.cfg.Fees.Rate,
		Floor:  uc.cfg.Fees.Floor,
	}

	if schedule, err := uc.gateway.QueryFees(ctx, amount.String()); err != nil {
		uc.logger.Warn("remote fee schedule unavailable, returning local estimate",
			zap.String("amount", amount.String()),
			zap.Error(err))
	} else {
		estimate.RemoteSchedule = schedule
	}

	return estimate, nil
}

// HealthReport is the service health snapshot.
type HealthReport struct {
	Status    string    `json:"status"`
	Upstream  string    `json:"upstream"`
	Ledger    int       `json:"ledgerSize"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Health probes upstream connectivity. A failed probe degrades the
// report instead of failing it.
func (uc *PaymentUsecase) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:    "ok",
		Upstream:  "reachable",
		Ledger:    uc.store.Stats().Total,
		CheckedAt: time.Now(),
	}

	if err := uc.gateway.Ping(ctx); err != nil {
		uc.logger.Warn("upstream probe failed", zap.Error(err))
		report.Status = "degraded"
		report.Upstream = "unreachable"
	}

	return report
}

func (uc *PaymentUsecase) bounds() domain.AmountBounds {
	return domain.AmountBounds{
		Min: uc.cfg.Limits.MinAmount,
		Max: uc.cfg.Limits.MaxAmount,
	}
}
