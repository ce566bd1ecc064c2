package sports

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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Messages relayed to callers when an upstream call fails
const (
	MsgUnauthorized = "Unauthorized access. Please check your API token."
	MsgNetwork      = "Network error: Unable to reach the server."
)

// ErrNetwork is returned when a provider cannot be reached
var ErrNetwork = errors.New(MsgNetwork)

// UpstreamError is a non-2xx answer from a provider
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client calls one sports-data provider
type Client struct {
	provider Provider
	client   *http.Client
}

// NewClient creates a provider client
func NewClient(p Provider, timeout time.Duration) *Client {
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	return &Client{
		provider: p,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Provider returns the provider configuration the client was built with
func (c *Client) Provider() Provider {
	return c.provider
}

// Items performs GET {base}{path}?token=...&{query} and returns response.items.
// A missing or malformed items array yields an empty list.
func (c *Client) Items(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("token", c.provider.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.provider.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ErrNetwork
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, ErrNetwork
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: MsgUnauthorized}
	}
	if resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("Upstream request failed with status %d", resp.StatusCode)
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return []json.RawMessage{}, nil
	}
	return objectItems(env.Response.Items), nil
}

// objectItems keeps the JSON objects of an items array
func objectItems(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []json.RawMessage{}
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		if trimmed := bytes.TrimSpace(item); len(trimmed) > 0 && trimmed[0] == '{' {
			out = append(out, item)
		}
	}
	return out
}
