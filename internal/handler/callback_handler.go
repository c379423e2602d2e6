// internal/handler/callback_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"mobipay-gateway/internal/usecase"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CallbackHandler struct {
	paymentUC *usecase.PaymentUsecase
	logger    *zap.Logger
}

func NewCallbackHandler(paymentUC *usecase.PaymentUsecase, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{
		paymentUC: paymentUC,
		logger:    logger,
	}
}

// HandleProviderCallback handles the provider's asynchronous result for
// a transaction. The provider expects a quick acknowledgement, so the
// payload is applied before responding but failures still return 200
// with a non-zero result code.
func (h *CallbackHandler) HandleProviderCallback(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	h.logger.Info("received provider callback",
		zap.String("reference", reference),
		zap.String("remote_addr", r.RemoteAddr))

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read callback payload",
			zap.String("reference", reference),
			zap.Error(err))
		h.sendCallbackResponse(w, "1", "Failed to read payload")
		return
	}

	if err := h.paymentUC.ProcessCallback(r.Context(), reference, payload); err != nil {
		h.logger.Error("failed to process provider callback",
			zap.String("reference", reference),
			zap.Error(err))
		h.sendCallbackResponse(w, "1", "Failed to process callback")
		return
	}

	h.sendCallbackResponse(w, "0", "Success")
}

func (h *CallbackHandler) sendCallbackResponse(w http.ResponseWriter, resultCode, resultDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"ResultCode": resultCode,
		"ResultDesc": resultDesc,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode callback response", zap.Error(err))
	}
}
