package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"desksync/internal/models"
)

var ErrUnauthorized = fmt.Errorf("desksync unauthorized")

// Client talks to the sync service. Identity rides in X-User-ID (supplied by
// the session layer); an optional shared token rides as a bearer credential.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userID     string
}

func NewClient(httpClient *http.Client, baseURL, token, userID string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		userID:     strings.TrimSpace(userID),
	}
}

func (c *Client) Fetch(ctx context.Context) (*models.Snapshot, error) {
	var out models.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/sync/v1/data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Push(ctx context.Context, req models.PushRequest) error {
	return c.do(ctx, http.MethodPost, "/api/sync/v1/data", req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var eb struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if strings.TrimSpace(eb.Error) != "" {
		return fmt.Errorf("desksync %d: %s", resp.StatusCode, eb.Error)
	}
	return fmt.Errorf("desksync status %d", resp.StatusCode)
}
