// Package netclient issues HTTPS GET requests and decodes JSON responses.
// No request is retried here; callers decide what a failure means.
package netclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "cloudpico-kiosk"
	maxBodyBytes     = 1 << 20
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Transport overrides http.DefaultTransport (tests, custom TLS roots).
	Transport http.RoundTripper
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: ua,
	}
}

// GetJSON fetches rawURL and decodes the body into dest.
// Transport and status failures return *NetworkError, decode failures *ParseError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dest any) error {
	payload, err := c.getBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return &ParseError{Source: hostOf(rawURL), Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

// CloseIdleConnections drops pooled connections so each cycle starts a fresh session.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) getBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: redact(rawURL), Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: redact(rawURL), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &NetworkError{URL: redact(rawURL), Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(payload) > maxBodyBytes {
		return nil, &NetworkError{URL: redact(rawURL), Status: resp.StatusCode, Err: errors.New("response body too large")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(bytes.ToValidUTF8(payload, nil)))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &NetworkError{URL: redact(rawURL), Status: resp.StatusCode, Err: errors.New(msg)}
	}

	return payload, nil
}
