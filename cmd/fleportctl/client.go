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

	"github.com/sonaligoyal925/FlePort/internal/api"
)

// Client calls the fleportd HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// getClientFunc is the function used to create an API client.
// It can be overridden in tests to point at an httptest server.
var getClientFunc = defaultGetClient

// getClient creates an API client.
func getClient() (*Client, error) {
	return getClientFunc()
}

func defaultGetClient() (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// APIError is a non-2xx response from fleportd.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s, HTTP %d)", e.Message, e.Field, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// do sends a request with an optional JSON body and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "fleportctl/"+version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp api.ErrorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); readErr == nil {
			if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
				apiErr.Message = errResp.Error
				apiErr.Field = errResp.Field
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// putRaw sends body unchanged, for entity records read from files.
func (c *Client) putRaw(ctx context.Context, path string, body []byte, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, json.RawMessage(body), out)
}
