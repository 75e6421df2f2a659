package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// engineClient talks to the health engine's HTTP surface.
type engineClient struct {
	base string
	http *http.Client
}

func newEngineClient(base string, timeout time.Duration) *engineClient {
	return &engineClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// do issues a request and returns the body. Any status outside expect is an
// error carrying the server's message.
func (c *engineClient) do(ctx context.Context, method, path string, query url.Values, body any, expect ...int) ([]byte, int, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	for _, code := range expect {
		if resp.StatusCode == code {
			return data, resp.StatusCode, nil
		}
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: %s (%d)", method, path, apiErr.Error, resp.StatusCode)
	}
	return nil, resp.StatusCode, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
}
