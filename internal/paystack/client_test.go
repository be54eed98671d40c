package paystack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransaction_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"reference": "ref123", "status": "success", "amount": 250000, "channel": "card"}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test_key", srv.Client())
	require.NoError(t, err)

	data, err := c.VerifyTransaction(context.Background(), "ref123")
	require.NoError(t, err)
	assert.Equal(t, "ref123", data.Reference)
	assert.Equal(t, "success", data.Status)
	assert.Equal(t, int64(250000), data.Amount)
}

func TestVerifyTransaction_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test_key", srv.Client())
	require.NoError(t, err)

	_, err = c.VerifyTransaction(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransactionNotFound))
}

func TestVerifyTransaction_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_bad_key", srv.Client())
	require.NoError(t, err)

	_, err = c.VerifyTransaction(context.Background(), "ref123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestVerifyTransaction_EscapesReference(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status": true, "data": {"reference": "a/b", "status": "success"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test_key", srv.Client())
	require.NoError(t, err)

	_, err = c.VerifyTransaction(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/transaction/verify/a%2Fb", gotPath)
}
