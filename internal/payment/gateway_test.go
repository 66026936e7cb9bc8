package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GatewayClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGatewayClient(config.PaymentConfig{
		APIURL:   server.URL,
		APIKey:   "sk_test",
		Currency: "mxn",
		Timeout:  5 * time.Second,
	})
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(19999), ToCents(199.99))
	assert.Equal(t, int64(10), ToCents(0.1))
	assert.Equal(t, int64(0), ToCents(0))
}

func TestGatewayClient_ChargeSucceeded(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "15050", r.PostForm.Get("amount"))
		assert.Equal(t, "mxn", r.PostForm.Get("currency"))
		assert.Equal(t, "tok_visa", r.PostForm.Get("source"))
		assert.Equal(t, "7", r.PostForm.Get("metadata[user_id]"))
		assert.Equal(t, "3", r.PostForm.Get("metadata[curso_id]"))
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test", user)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ch_1","status":"succeeded","amount":15050,"currency":"mxn"}`))
	})

	charge, err := gateway.Charge(context.Background(), ChargeRequest{
		Amount: 150.5, Source: "tok_visa", Description: "Pago de curso: Go", UserID: 7, CourseID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_1", charge.ID)
}

func TestGatewayClient_ChargeDeclined(t *testing.T) {
	t.Run("non succeeded status", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"ch_2","status":"pending"}`))
		})
		_, err := gateway.Charge(context.Background(), ChargeRequest{Amount: 10, Source: "tok"})
		assert.ErrorIs(t, err, ErrChargeDeclined)
	})

	t.Run("error response", func(t *testing.T) {
		gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"message":"card declined","code":"card_declined"}}`))
		})
		_, err := gateway.Charge(context.Background(), ChargeRequest{Amount: 10, Source: "tok"})
		assert.ErrorIs(t, err, ErrChargeDeclined)
	})
}

func TestGatewayClient_ChargeIsTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	calls := 0
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls > 1 {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"ch_9","status":"succeeded","amount":1000,"currency":"mxn"}`))
	})

	_, err := gateway.Charge(context.Background(), ChargeRequest{Amount: 10, Source: "tok", CourseID: 4})
	require.NoError(t, err)
	_, err = gateway.Charge(context.Background(), ChargeRequest{Amount: 10, Source: "tok", CourseID: 4})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "payment.charge", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events(), "the error is recorded on the span")
}
