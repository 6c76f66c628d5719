// Package client talks to the mapping store HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/wbdrift/internal/model"
)

// Client calls a wbdrift server. Requests are never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:3300".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient returns a client using hc for transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	c.http = hc
	return c
}

type ackResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Error   string        `json:"error"`
	Mapping model.Mapping `json:"mapping"`
}

// FetchMapping returns the full mapping table.
func (c *Client) FetchMapping(ctx context.Context) (model.Mapping, error) {
	resp, err := c.do(ctx, http.MethodGet, "/wb-mapping", nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	mapping := model.Mapping{}
	if err := json.NewDecoder(resp.Body).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	return mapping, nil
}

// AddMapping merges entries into the server's table and returns the merged table.
func (c *Client) AddMapping(ctx context.Context, entries model.Mapping) (model.Mapping, error) {
	ack, err := c.postJSON(ctx, "/add-mapping", entries)
	if err != nil {
		return nil, err
	}
	return ack.Mapping, nil
}

// AddCharacters submits a practice character set.
func (c *Client) AddCharacters(ctx context.Context, text string) error {
	_, err := c.postJSON(ctx, "/add-characters", map[string]string{"characters": text})
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (ackResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return ackResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return ackResponse{}, err
	}
	defer closeBody(resp)

	var ack ackResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		if resp.StatusCode != http.StatusOK {
			return ackResponse{}, fmt.Errorf("server returned %s", resp.Status)
		}
		return ackResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !ack.Success {
		msg := ack.Error
		if msg == "" {
			msg = resp.Status
		}
		return ackResponse{}, fmt.Errorf("save failed: %s", msg)
	}
	return ack, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed (is the server running?): %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		// Best-effort close.
		_ = cerr
	}
}
