package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/types"
)

// Submission outcomes.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
)

// ErrNotFound is returned when the service answers 404.
var ErrNotFound = errors.New("not found")

// Client talks to the fairway HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks that the metrics endpoint answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK)
}

// Submit posts one profile update and reports whether it was accepted or a duplicate.
func (c *Client) Submit(ctx context.Context, updateID string, p model.Profile) (string, error) { //nolint:gocritic // hugeParam
	body := struct {
		UpdateID string        `json:"update_id,omitempty"`
		Profile  model.Profile `json:"profile"`
	}{UpdateID: updateID, Profile: p}

	var res types.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/profiles", body, &res, http.StatusAccepted, http.StatusOK); err != nil {
		return "", err
	}
	return res.Status, nil
}

// Profile fetches one stored profile.
func (c *Client) Profile(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(id), nil, &p, http.StatusOK)
	return p, err
}

// Discover fetches the ranked candidates of userID.
func (c *Client) Discover(ctx context.Context, userID string, limit int) (types.DiscoverResult, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/matches/" + url.PathEscape(userID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res types.DiscoverResult
	err := c.do(ctx, http.MethodGet, path, nil, &res, http.StatusOK)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	ok := false
	for _, code := range accept {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
