// Package callback delivers the final session report to the external
// collaborator. Only the payload contract is ours; retries and durability
// are the collaborator's side of the fence.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/sentinellabs/honeypot/backend/internal/model/report"
)

// maxResponseBytes caps how much of the collaborator's response we read.
const maxResponseBytes = 64 * 1024

// Client posts final reports over HTTP with a pooled transport.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client for the given callback URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Send posts the report as JSON. The caller decides whether delivery is
// fire-and-forget; Send itself just reports the outcome.
func (c *Client) Send(ctx context.Context, rep report.FinalReport) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal final report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post final report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback rejected report: status %d", resp.StatusCode)
	}

	log.Printf("[callback] delivered final report for session=%s", rep.SessionID)
	return nil
}
