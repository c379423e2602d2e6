// internal/handler/payment_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mobipay-gateway/internal/domain"
	"mobipay-gateway/internal/ledger"
	"mobipay-gateway/internal/usecase"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentUC  *usecase.PaymentUsecase
	production bool
	logger     *zap.Logger
}

func NewPaymentHandler(paymentUC *usecase.PaymentUsecase, production bool, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentUC:  paymentUC,
		production: production,
		logger:     logger,
	}
}

// HandleCreatePayment handles POST /payments (STK push).
func (h *PaymentHandler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	tx, message, err := h.paymentUC.InitiatePayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"reference": tx.Reference,
		"status":    tx.Status,
		"message":   message,
	})
}

// HandleCreateWithdrawal handles POST /withdrawals (B2C payout).
func (h *PaymentHandler) HandleCreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req domain.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.NewValidationError("body", "invalid request body"))
		return
	}

	tx, message, err := h.paymentUC.InitiateWithdrawal(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"reference": tx.Reference,
		"status":    tx.Status,
		"message":   message,
	})
}

// HandleTransactionStatus handles GET /transactions/{reference}/status.
func (h *PaymentHandler) HandleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	tx, err := h.paymentUC.CheckStatus(r.Context(), reference)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tx)
}

// HandleListTransactions handles GET /transactions?kind=&status=&page=&limit=.
func (h *PaymentHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ledger.Filter{}
	switch q.Get("kind") {
	case "":
	case string(domain.KindC2B):
		filter.Kind = domain.KindC2B
	case string(domain.KindB2C):
		filter.Kind = domain.KindB2C
	default:
		h.writeError(w, domain.NewValidationError("kind", "kind must be C2B or B2C"))
		return
	}
	if status := q.Get("status"); status != "" {
		filter.StatusIn = []domain.TransactionStatus{domain.ParseStatus(status)}
	}

	page := ledger.Page{
		Page:  atoiDefault(q.Get("page"), 1),
		Limit: atoiDefault(q.Get("limit"), 10),
	}.Clamp()

	records, total, stats := h.paymentUC.ListTransactions(filter, page)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": records,
		"total":        total,
		"page":         page.Page,
		"limit":        page.Limit,
		"statistics":   stats,
	})
}

// HandleDeleteTransaction handles DELETE /transactions/{reference}.
// Idempotent: always 200, with a flag reporting whether anything was
// removed.
func (h *PaymentHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	removed := h.paymentUC.DeleteTransaction(reference)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reference": reference,
		"removed":   removed,
	})
}

// HandleFeeEstimate handles GET /fees?amount=.
func (h *PaymentHandler) HandleFeeEstimate(w http.ResponseWriter, r *http.Request) {
	estimate, err := h.paymentUC.EstimateFee(r.Context(), r.URL.Query().Get("amount"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, estimate)
}

// HandleHealth handles GET /health.
func (h *PaymentHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.paymentUC.Health(r.Context()))
}

func (h *PaymentHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	}); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError is the single place errors become HTTP status codes.
func (h *PaymentHandler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		duplicateErr  *domain.DuplicateReferenceError
		gatewayErr    *domain.GatewayError
		networkErr    *domain.NetworkError
	)

	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &duplicateErr):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "transaction not found"
	case errors.As(err, &gatewayErr):
		status = http.StatusBadGateway
		if gatewayErr.Status >= 400 && gatewayErr.Status < 600 {
			status = gatewayErr.Status
		}
		message = gatewayErr.Message
	case errors.As(err, &networkErr):
		status = http.StatusBadGateway
		message = "payment provider unreachable"
	default:
		h.logger.Error("unexpected error", zap.Error(err))
		if h.production {
			message = "internal server error"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
