// Package payment is the charge client for the Stripe-style payment
// gateway.
package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client posts charges to the gateway's /v1/charges endpoint as a
// form-encoded request. Every call carries an explicit timeout; the
// gateway sits on the order workflow's critical path.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Charge settles amount (minor units, pre-converted by the caller) against
// the given source. Any non-2xx response is a failure.
func (c *Client) Charge(ctx context.Context, amount int64, currency, source string) error {
	if amount <= 0 || currency == "" || source == "" {
		return fmt.Errorf("charge: missing or invalid fields")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("source", source)
	form.Set("description", "Pizza delivery order")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/charges", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("charge: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("charge: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
