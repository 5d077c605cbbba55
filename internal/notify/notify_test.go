package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReceipt(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostFormValue("from"),
			"to":      r.PostFormValue("to"),
			"subject": r.PostFormValue("subject"),
			"html":    r.PostFormValue("html"),
		}
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api", user)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "Pizza Delivery <receipts@example.com>", 5*time.Second)
	err := c.SendReceipt(context.Background(), "Alice <alice@example.com>", "Pizza-delivery receipt", "<h3>Receipt</h3>")
	require.NoError(t, err)

	assert.Equal(t, "Pizza Delivery <receipts@example.com>", gotForm["from"])
	assert.Equal(t, "Alice <alice@example.com>", gotForm["to"])
	assert.Equal(t, "Pizza-delivery receipt", gotForm["subject"])
	assert.Equal(t, "<h3>Receipt</h3>", gotForm["html"])
}

func TestSendReceiptNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "from@example.com", 5*time.Second)
	err := c.SendReceipt(context.Background(), "to@example.com", "s", "<p>x</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendReceiptInvalidFields(t *testing.T) {
	c := NewClient("http://unused.invalid", "k", "f", time.Second)

	assert.Error(t, c.SendReceipt(context.Background(), "", "s", "h"))
	assert.Error(t, c.SendReceipt(context.Background(), "to", "", "h"))
	assert.Error(t, c.SendReceipt(context.Background(), "to", "s", ""))
}
