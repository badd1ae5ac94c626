package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/domain/zone"
)

// Client is a small JSON client for the courtside API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// do sends a JSON request and decodes a 2xx response into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, path, commandID string, body, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if commandID != "" {
		req.Header.Set("Idempotency-Key", commandID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// Actions returns the vocabulary of a sport.
func (c *Client) Actions(ctx context.Context, s model.Sport) ([]sport.ActionDef, error) {
	var defs []sport.ActionDef
	err := c.do(ctx, http.MethodGet, "/sports/"+string(s)+"/actions", "", nil, &defs)
	return defs, err
}

// CreateMatch creates a match.
func (c *Client) CreateMatch(ctx context.Context, req service.CreateRequest) (types.MatchView, error) {
	var view types.MatchView
	err := c.do(ctx, http.MethodPost, "/matches", "", req, &view)
	return view, err
}

// Match fetches the match view.
func (c *Client) Match(ctx context.Context, id string) (types.MatchView, error) {
	var view types.MatchView
	err := c.do(ctx, http.MethodGet, "/matches/"+id, "", nil, &view)
	return view, err
}

// Snapshot fetches the serializable match state.
func (c *Client) Snapshot(ctx context.Context, id string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := c.do(ctx, http.MethodGet, "/matches/"+id+"/snapshot", "", nil, &snap)
	return snap, err
}

// Highlights returns the legal landing zones of the armed action.
func (c *Client) Highlights(ctx context.Context, id string) ([]zone.Rect, error) {
	var rects []zone.Rect
	err := c.do(ctx, http.MethodGet, "/matches/"+id+"/highlights", "", nil, &rects)
	return rects, err
}

// Command posts a match command such as "select", "tap" or "sets/end".
func (c *Client) Command(ctx context.Context, id, command, commandID string, body any) (service.Outcome, error) {
	var out service.Outcome
	err := c.do(ctx, http.MethodPost, "/matches/"+id+"/"+command, commandID, body, &out)
	return out, err
}
