// Package api implements the HTTP transport for the wallet backend: request
// descriptors, the JSON client and the typed error the rest of the client
// matches on. It carries no credentials of its own; the session layer decides
// which bearer token, if any, accompanies each call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/miniwallet/internal/common"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

// Client issues JSON requests against the backend API root.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient constructs a Client for the given API root, e.g.
// "https://wallet.example.com/api".
func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Do sends the request, attaching the bearer token when non-empty, and
// returns the raw response body. Any non-2xx status is returned as *Error
// with the status code and body text.
func (c *Client) Do(ctx context.Context, token string, req Request) ([]byte, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug(ctx, "api call failed",
			"method", req.Method, "path", req.Path,
			"status", resp.StatusCode, "request_id", requestID)
		return nil, &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}

// Ping checks backend liveness. It needs no credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, "", NewRequest(http.MethodGet, "/health"))
	return err
}

// DecodeData unwraps the {"data": ...} envelope into T.
func DecodeData[T any](body []byte) (T, error) {
	var envelope Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		var zero T
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return envelope.Data, nil
}
