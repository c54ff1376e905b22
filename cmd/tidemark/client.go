// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by client commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// serverClient provides HTTP access to a running Tidemark server.
type serverClient struct {
	baseURL string
	http    *http.Client
}

// newServerClient creates a client targeting host:port or a full URL.
func newServerClient(addr string) *serverClient {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &serverClient{
		baseURL: strings.TrimRight(base, "/"),
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *serverClient) getJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

// postJSON sends body as JSON and decodes the response into dest.
func (c *serverClient) postJSON(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

func (c *serverClient) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return tmerr.Errorf(tmerr.CodeCLIInputInvalid, "encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return tmerr.Errorf(tmerr.CodeCLIRequestFailure, "building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return tmerr.New(tmerr.CodeCLIServerNotRunning, "server is not running (connection refused)",
				tmerr.Field("address", c.baseURL))
		}
		return tmerr.Errorf(tmerr.CodeCLIRequestFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return tmerr.New(tmerr.CodeCLIRequestFailure, "server returned "+resp.Status+": "+problemDetail(raw),
			tmerr.Field("status", resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return tmerr.Errorf(tmerr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// problemDetail extracts the detail of a problem+json body, or returns the
// body as is.
func problemDetail(raw []byte) string {
	var problem struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil && problem.Detail != "" {
		return problem.Detail
	}
	return strings.TrimSpace(string(raw))
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
