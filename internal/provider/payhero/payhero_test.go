package payhero

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mobipay-gateway/config"
	"mobipay-gateway/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL:        baseURL,
		AuthToken:      "dGVzdDp0ZXN0",
		ChannelID:      "1234",
		ProviderName:   "m-pesa",
		RequestTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func paymentPayload() *domain.NormalizedPayment {
	return &domain.NormalizedPayment{
		Reference:   "DEP-1",
		Kind:        domain.KindC2B,
		PhoneNumber: "254712345678",
		Amount:      decimal.RequireFromString("100.00"),
	}
}

func TestSubmitPayment(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "Basic dGVzdDp0ZXN0", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":"QUEUED","reference":"PRV-55"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).SubmitPayment(context.Background(), paymentPayload())
	require.NoError(t, err)

	assert.Equal(t, "PRV-55", result.ProviderRef)
	assert.Equal(t, domain.StatusQueued, result.InitialStatus)

	// Amount crosses the wire as whole units, not a formatted string.
	assert.Equal(t, float64(100), received["amount"])
	assert.Equal(t, "254712345678", received["phone_number"])
	assert.Equal(t, "1234", received["channel_id"])
	assert.Equal(t, "DEP-1", received["external_reference"])
}

func TestSubmitWithdrawal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/withdraw", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "63902", body["network_code"])

		_, _ = w.Write([]byte(`{"success":true,"status":"PENDING","reference":"PRV-56"}`))
	}))
	defer srv.Close()

	payload := paymentPayload()
	payload.Kind = domain.KindB2C
	payload.NetworkCode = "63902"

	result, err := newTestClient(srv.URL).SubmitWithdrawal(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, result.InitialStatus)
}

func TestSubmitPaymentUpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SubmitPayment(context.Background(), paymentPayload())

	var gatewayErr *domain.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusForbidden, gatewayErr.Status)
	assert.Equal(t, "invalid credentials", gatewayErr.Message)
}

func TestSubmitPaymentTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).SubmitPayment(context.Background(), paymentPayload())

	var networkErr *domain.NetworkError
	assert.ErrorAs(t, err, &networkErr)
}

func TestQueryStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction-status", r.URL.Path)
		assert.Equal(t, "DEP-1", r.URL.Query().Get("reference"))
		_, _ = w.Write([]byte(`{"status":"SUCCESS","reference":"DEP-1","provider_reference":"QK12345","amount":"100","phone_number":"254712345678"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).QueryStatus(context.Background(), "DEP-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, "QK12345", result.ProviderRef)
	assert.Equal(t, "254712345678", result.PhoneNumber)
}

func TestQueryStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPingTreatsAnyResponseAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL).Ping(context.Background()))
}

func TestPingTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.Error(t, newTestClient(srv.URL).Ping(context.Background()))
}

func TestMapProviderStatus(t *testing.T) {
	tests := map[string]domain.TransactionStatus{
		"QUEUED":     domain.StatusQueued,
		"pending":    domain.StatusPending,
		"SENT":       domain.StatusPending,
		"PROCESSING": domain.StatusProcessing,
		"SUCCESS":    domain.StatusSuccess,
		"completed":  domain.StatusSuccess,
		"FAILED":     domain.StatusFailed,
		"CANCELLED":  domain.StatusFailed,
		"REJECTED":   domain.StatusFailed,
		"weird":      domain.StatusUnknown,
		"":           domain.StatusUnknown,
	}
	for input, want := range tests {
		assert.Equal(t, want, mapProviderStatus(input), "input %q", input)
	}
}

func TestWireAmountRoundsHalfAwayFromZero(t *testing.T) {
	tests := map[string]int64{
		"100":    100,
		"99.99":  100,
		"100.6":  101,
		"100.5":  101,
		"100.49": 100,
		"100.4":  100,
	}
	for input, want := range tests {
		p := paymentPayload()
		p.Amount = decimal.RequireFromString(input)
		assert.Equal(t, want, wireAmount(p), "amount %s", input)
	}
}
