package daemonclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arduino/arduino-app-updater/internal/api"
	"github.com/arduino/arduino-app-updater/internal/settings"
	"github.com/arduino/arduino-app-updater/internal/update"
)

type staticService struct{}

func (staticService) Check(ctx context.Context) (*update.Release, error) {
	return &update.Release{Version: "2.0.0", CurrentVersion: "1.0.0"}, nil
}

func (staticService) DownloadAndInstall(ctx context.Context, r *update.Release, onEvent func(update.ProgressEvent)) error {
	onEvent(update.ProgressEvent{Kind: update.Started, TotalBytes: 10})
	onEvent(update.ProgressEvent{Kind: update.Progress, ChunkBytes: 5})
	onEvent(update.ProgressEvent{Kind: update.Finished})
	return nil
}

func newTestClient(t *testing.T) (*Client, *update.Manager) {
	store := settings.NewStore(filepath.Join(t.TempDir(), "properties.msgpack"))
	m := update.NewManager(staticService{}, nil)
	srv := httptest.NewServer(api.NewHTTPRouter("1.0.0", m, store))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c := New(srv.Client(), u.Port())
	c.baseURL.Host = u.Host
	return c, m
}

func TestState(t *testing.T) {
	c, m := newTestClient(t)

	s, err := c.State(t.Context())
	require.NoError(t, err)
	require.Equal(t, update.StatusIdle, s.Status)

	m.CheckForUpdate(t.Context())
	s, err = c.State(t.Context())
	require.NoError(t, err)
	require.Equal(t, update.StatusAvailable, s.Status)
}

func TestRestartNotReady(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Restart(t.Context())
	require.EqualError(t, err, "daemon error (412): no update ready to be applied")
}

func TestWatch(t *testing.T) {
	c, m := newTestClient(t)
	m.CheckForUpdate(t.Context())

	started := make(chan struct{})
	var statuses []update.Status
	go func() {
		<-started
		m.DownloadAndInstall(context.Background())
	}()

	err := c.Watch(t.Context(), func(s update.State) bool {
		statuses = append(statuses, s.Status)
		if len(statuses) == 1 {
			close(started)
		}
		return !s.Done()
	})
	require.NoError(t, err)
	require.Equal(t, update.StatusAvailable, statuses[0])
	require.Equal(t, update.StatusReady, statuses[len(statuses)-1])
}

func TestUnreachableDaemon(t *testing.T) {
	c := New(&http.Client{}, "1")
	_, err := c.State(t.Context())
	require.Error(t, err)
}
