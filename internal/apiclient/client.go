// Package apiclient is the request/response path to the backend. The app
// stays usable on this path even while the push channel is down.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hoshimi/periscope/internal/alert"
	"github.com/hoshimi/periscope/internal/api"
	"github.com/hoshimi/periscope/internal/model"
)

const defaultUnaryTimeout = 10 * time.Second

type Client struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	unaryTimeout time.Duration
}

func New(baseURL, apiKey string) *Client {
	return NewWithClient(baseURL, apiKey, &http.Client{})
}

func NewWithClient(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		client:       client,
		unaryTimeout: defaultUnaryTimeout,
	}
}

func (c *Client) WithUnaryTimeout(timeout time.Duration) *Client {
	if c == nil {
		return nil
	}
	clone := *c
	clone.unaryTimeout = timeout
	return &clone
}

// RequestError carries the classification derived at the network boundary.
// It is ephemeral: consumed once by the alert router or the calling view.
type RequestError struct {
	StatusCode int
	Kind       model.ErrorKind
	Message    string
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("http %d: %s", e.StatusCode, msg)
	}
	return msg
}

// Status is the boot-time account/profile probe.
func (c *Client) Status(ctx context.Context) (api.StatusEnvelope, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return api.StatusEnvelope{}, err
	}
	var env api.StatusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return api.StatusEnvelope{}, fmt.Errorf("decode status envelope: %w", err)
	}
	return env, nil
}

func (c *Client) LatestBriefing(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, "/api/briefing/latest", nil)
}

func (c *Client) Proposals(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, "/api/proposals", nil)
}

func (c *Client) Timeline(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, "/api/timeline", nil)
}

// RefreshDashboard fans out to the primary data sources. Each source is
// requested independently; a failure in one never cancels or corrupts the
// others. The per-source errors are returned for the caller to log.
func (c *Client) RefreshDashboard(ctx context.Context) (api.Dashboard, map[string]error) {
	var dash api.Dashboard
	failures := map[string]error{}
	if data, err := c.LatestBriefing(ctx); err != nil {
		failures["briefing"] = err
	} else {
		dash.Briefing = data
	}
	if data, err := c.Proposals(ctx); err != nil {
		failures["proposals"] = err
	} else {
		dash.Proposals = data
	}
	if data, err := c.Timeline(ctx); err != nil {
		failures["timeline"] = err
	} else {
		dash.Timeline = data
	}
	return dash, failures
}

func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	reqCtx := ctx
	if c.unaryTimeout > 0 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.unaryTimeout {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.unaryTimeout)
			defer cancel()
		}
	}
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		// No response at all: status 0 classifies as backend down.
		return nil, &RequestError{Kind: alert.Classify(0, nil), Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Kind:       alert.Classify(resp.StatusCode, payload),
			Message:    errorMessage(payload, resp.StatusCode),
		}
	}
	return payload, nil
}

func errorMessage(payload []byte, status int) string {
	var er api.ErrorResponse
	if err := json.Unmarshal(payload, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	if msg := strings.TrimSpace(string(payload)); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP_%d", status)
}
