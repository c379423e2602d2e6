// internal/provider/payhero/payhero.go
package payhero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mobipay-gateway/config"
	"mobipay-gateway/internal/domain"
	"mobipay-gateway/internal/provider"

	"go.uber.org/zap"
)

// Client talks to the PayHero-style aggregator REST API. It is the only
// place amounts leave the decimal representation: the aggregator accepts
// whole currency units as an integer, produced here via wireAmount.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.ProviderConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// paymentRequest is the aggregator's STK push payload.
type paymentRequest struct {
	Amount            int64  `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	ChannelID         string `json:"channel_id"`
	Provider          string `json:"provider"`
	ExternalReference string `json:"external_reference"`
	CustomerName      string `json:"customer_name,omitempty"`
	CallbackURL       string `json:"callback_url,omitempty"`
}

// withdrawRequest is the aggregator's B2C payout payload.
type withdrawRequest struct {
	Amount            int64  `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	NetworkCode       string `json:"network_code"`
	ChannelID         string `json:"channel_id"`
	ExternalReference string `json:"external_reference"`
	Description       string `json:"description,omitempty"`
}

type submitResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

type statusResponse struct {
	Status      string `json:"status"`
	Reference   string `json:"reference"`
	ProviderRef string `json:"provider_reference"`
	Amount      string `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	ResultCode  string `json:"result_code"`
	ResultDesc  string `json:"result_desc"`
}

// SubmitPayment initiates an STK push for a C2B payment.
func (c *Client) SubmitPayment(ctx context.Context, p *domain.NormalizedPayment) (*provider.SubmitResult, error) {
	req := paymentRequest{
		Amount:            wireAmount(p),
		PhoneNumber:       p.PhoneNumber,
		ChannelID:         c.cfg.ChannelID,
		Provider:          c.cfg.ProviderName,
		ExternalReference: p.Reference,
		CustomerName:      p.CustomerName,
		CallbackURL:       c.callbackURL(p.Reference),
	}

	raw, err := c.post(ctx, "/payments", req)
	if err != nil {
		return nil, err
	}
	return c.parseSubmit(p.Reference, raw)
}

// SubmitWithdrawal initiates a B2C payout to a mobile wallet.
func (c *Client) SubmitWithdrawal(ctx context.Context, p *domain.NormalizedPayment) (*provider.SubmitResult, error) {
	req := withdrawRequest{
		Amount:            wireAmount(p),
		PhoneNumber:       p.PhoneNumber,
		NetworkCode:       p.NetworkCode,
		ChannelID:         c.cfg.ChannelID,
		ExternalReference: p.Reference,
		Description:       p.Description,
	}

	raw, err := c.post(ctx, "/withdraw", req)
	if err != nil {
		return nil, err
	}
	return c.parseSubmit(p.Reference, raw)
}

// QueryStatus fetches the provider's view of a transaction.
func (c *Client) QueryStatus(ctx context.Context, reference string) (*provider.StatusResult, error) {
	endpoint := "/transaction-status?reference=" + url.QueryEscape(reference)

	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.GatewayError{Status: http.StatusBadGateway, Message: "unparseable status response"}
	}

	return &provider.StatusResult{
		Status:      mapProviderStatus(resp.Status),
		ProviderRef: firstNonEmpty(resp.ProviderRef, resp.Reference),
		Amount:      resp.Amount,
		PhoneNumber: resp.PhoneNumber,
		Raw:         raw,
	}, nil
}

// QueryFees fetches the aggregator's charge estimate for an amount.
func (c *Client) QueryFees(ctx context.Context, amount string) (json.RawMessage, error) {
	endpoint := "/service-charge-estimate?amount=" + url.QueryEscape(amount)
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Ping probes the aggregator with a lightweight status query. Any
// response at all (including not-found) proves connectivity.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/transaction-status?reference=ping", nil)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	var gatewayErr *domain.GatewayError
	if errors.As(err, &gatewayErr) {
		return nil
	}
	return err
}

func (c *Client) parseSubmit(reference string, raw json.RawMessage) (*provider.SubmitResult, error) {
	var resp submitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.GatewayError{Status: http.StatusBadGateway, Message: "unparseable submit response"}
	}

	status := mapProviderStatus(resp.Status)
	if status == domain.StatusUnknown {
		// Accepted submissions with no recognizable status stay pending;
		// a later status check reconciles them.
		status = domain.StatusPending
	}

	c.logger.Info("provider submission response",
		zap.String("reference", reference),
		zap.String("provider_ref", resp.Reference),
		zap.String("status", string(status)))

	return &provider.SubmitResult{
		ProviderRef:   resp.Reference,
		InitialStatus: status,
		Message:       resp.Message,
		Raw:           raw,
	}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// do performs one HTTP exchange with the aggregator. Non-2xx responses
// become GatewayError (404 on status lookups becomes ErrNotFound) and
// transport failures become NetworkError.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("provider request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, &domain.NetworkError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: method + " " + endpoint, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("provider rejected request",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("upstream_status", resp.StatusCode))
		return nil, &domain.GatewayError{
			Status:  resp.StatusCode,
			Message: extractMessage(respBody),
		}
	}

	return respBody, nil
}

func (c *Client) callbackURL(reference string) string {
	if c.cfg.CallbackBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/callbacks/%s", c.cfg.CallbackBaseURL, reference)
}

// wireAmount converts the canonical decimal amount to the aggregator's
// wire format: whole currency units as an integer, rounded half away
// from zero. Fractional amounts are accepted at creation and recorded
// exactly in the ledger; the cent difference exists only on the wire,
// where the aggregator cannot represent it.
func wireAmount(p *domain.NormalizedPayment) int64 {
	return p.Amount.Round(0).IntPart()
}

// mapProviderStatus folds the aggregator's status vocabulary onto the
// local status set.
func mapProviderStatus(s string) domain.TransactionStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUEUED":
		return domain.StatusQueued
	case "PENDING", "SENT", "INITIATED":
		return domain.StatusPending
	case "PROCESSING":
		return domain.StatusProcessing
	case "SUCCESS", "COMPLETED":
		return domain.StatusSuccess
	case "FAILED", "CANCELLED", "REJECTED":
		return domain.StatusFailed
	}
	return domain.StatusUnknown
}

func extractMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
