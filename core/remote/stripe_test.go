package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStripeClient(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewStripeClient(Config{
		SecretKey:      "sk_test_123",
		APIURL:         srv.URL,
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return client
}

func TestNewStripeClient_MissingKey(t *testing.T) {
	_, err := NewStripeClient(Config{})
	assert.ErrorContains(t, err, "secret key")
}

func TestStripeClient_RetrieveProduct(t *testing.T) {
	client := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products/prod_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prod_123","object":"product","name":"Pro Plan (Monthly)","description":"Pro","active":true,"metadata":{"local_id":"plan_pro_monthly"}}`))
	})

	product, err := client.RetrieveProduct(context.Background(), "prod_123")
	require.NoError(t, err)
	assert.Equal(t, "prod_123", product.ID)
	assert.Equal(t, "Pro Plan (Monthly)", product.Name)
	assert.Equal(t, "plan_pro_monthly", product.LocalID())
	assert.True(t, product.Active)
}

func TestStripeClient_RetrieveProduct_NotFound(t *testing.T) {
	client := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such product: 'prod_gone'"}}`))
	})

	_, err := client.RetrieveProduct(context.Background(), "prod_gone")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "No such product")
}

func TestStripeClient_CreatePrice(t *testing.T) {
	client := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/prices", r.URL.Path)
		assert.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4900", r.PostForm.Get("unit_amount"))
		assert.Equal(t, "month", r.PostForm.Get("recurring[interval]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"price_1","object":"price","product":"prod_123","currency":"usd","unit_amount":4900,"active":true,"recurring":{"interval":"month"}}`))
	})

	price, err := client.CreatePrice(context.Background(), PriceParams{
		ProductID:      "prod_123",
		Currency:       "usd",
		UnitAmount:     4900,
		Interval:       IntervalMonth,
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "price_1", price.ID)
	assert.Equal(t, "prod_123", price.ProductID)
	assert.Equal(t, int64(4900), price.UnitAmount)
	assert.Equal(t, IntervalMonth, price.Interval)
}

func TestStripeClient_ServerError(t *testing.T) {
	client := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"try again"}}`))
	})

	_, err := client.DeactivatePrice(context.Background(), "price_1")
	require.Error(t, err)
	assert.Equal(t, KindProvider, KindOf(err))
	assert.True(t, IsTransient(err))
}
