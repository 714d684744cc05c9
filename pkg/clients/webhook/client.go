package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client posts plain-text notifications to an incoming webhook.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client. token is sent as a bearer credential
// when non-empty.
func NewClient(url, token string) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	return &Client{httpClient: restyClient, url: url}
}

type message struct {
	Text string `json:"text"`
}

// Send delivers text as {"text": ...}.
func (c *Client) Send(ctx context.Context, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(message{Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook error: code=%d, body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
