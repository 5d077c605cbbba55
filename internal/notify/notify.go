// Package notify is the receipt-email client for the Mailgun-style
// notification collaborator.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		http:    &http.Client{Timeout: timeout},
	}
}

// SendReceipt posts a form-encoded message. Any non-2xx response is a
// failure, which the order workflow surfaces to the caller even though the
// order itself is already committed.
func (c *Client) SendReceipt(ctx context.Context, to, subject, html string) error {
	if to == "" || subject == "" || html == "" {
		return fmt.Errorf("send receipt: missing or invalid fields")
	}

	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("html", html)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v3/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send receipt: upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
