package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharge(t *testing.T) {
	var got *http.Request
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"amount":   r.PostFormValue("amount"),
			"currency": r.PostFormValue("currency"),
			"source":   r.PostFormValue("source"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_key", 5*time.Second)
	require.NoError(t, c.Charge(context.Background(), 1600, "usd", "tok_visa"))

	assert.Equal(t, "/v1/charges", got.URL.Path)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.NotEmpty(t, got.Header.Get("Idempotency-Key"))

	user, _, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "sk_test_key", user)

	assert.Equal(t, map[string]string{
		"amount":   "1600",
		"currency": "usd",
		"source":   "tok_visa",
	}, gotForm)
}

func TestChargeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "card declined", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test_key", 5*time.Second)
	err := c.Charge(context.Background(), 1600, "usd", "tok_visa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "card declined")
}

func TestChargeInvalidFields(t *testing.T) {
	c := NewClient("http://unused.invalid", "k", time.Second)

	assert.Error(t, c.Charge(context.Background(), 0, "usd", "tok_visa"))
	assert.Error(t, c.Charge(context.Background(), 100, "", "tok_visa"))
	assert.Error(t, c.Charge(context.Background(), 100, "usd", ""))
}
