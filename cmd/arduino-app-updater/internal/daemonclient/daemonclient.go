// Package daemonclient talks to a running arduino-app-updater daemon.
package daemonclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/tmaxmax/go-sse"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/internal/update"
)

// The actual listening address for the daemon
// is defined in the installation package
const (
	DefaultHostname = "localhost"
	DefaultPort     = "8800"
)

type Client struct {
	httpClient *http.Client
	baseURL    url.URL
}

func New(httpClient *http.Client, port string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL: url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(DefaultHostname, port),
		},
	}
}

func (c *Client) url(path string) string {
	u := c.baseURL
	u.Path = path
	return u.String()
}

func (c *Client) Version(ctx context.Context) (string, error) {
	var v models.VersionResponse
	err := c.do(ctx, http.MethodGet, "/v1/version", http.StatusOK, &v)
	return v.Version, err
}

func (c *Client) State(ctx context.Context) (update.State, error) {
	var s update.State
	err := c.do(ctx, http.MethodGet, "/v1/update", http.StatusOK, &s)
	return s, err
}

func (c *Client) Restart(ctx context.Context) (update.State, error) {
	var s update.State
	err := c.do(ctx, http.MethodPost, "/v1/update/restart", http.StatusAccepted, &s)
	return s, err
}

// Watch calls onState for every state published by the daemon until onState
// returns false or ctx is done.
func (c *Client) Watch(ctx context.Context, onState func(update.State) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/v1/update/events"), nil)
	if err != nil {
		return err
	}
	client := &sse.Client{
		HTTPClient: c.httpClient,
		Backoff:    sse.Backoff{MaxRetries: 3},
	}
	conn := client.NewConnection(req)

	var decodeErr error
	conn.SubscribeEvent("state", func(event sse.Event) {
		var s update.State
		if err := json.Unmarshal([]byte(event.Data), &s); err != nil {
			decodeErr = fmt.Errorf("invalid state event: %w", err)
			cancel()
			return
		}
		if !onState(s) {
			cancel()
		}
	})

	err = conn.Connect()
	if decodeErr != nil {
		return decodeErr
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, expectedStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		var errResp models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Details != "" {
			return fmt.Errorf("daemon error (%d): %s", resp.StatusCode, errResp.Details)
		}
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
