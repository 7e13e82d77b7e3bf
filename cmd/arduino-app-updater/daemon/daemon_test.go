package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/servicelocator"
	"github.com/arduino/arduino-app-updater/internal/config"
)

func TestCors(t *testing.T) {
	t.Setenv("ARDUINO_APP_UPDATER__DATA_DIR", t.TempDir())
	t.Setenv("ARDUINO_APP_UPDATER__CONFIG_DIR", t.TempDir())
	t.Setenv("ARDUINO_APP_UPDATER__FEED_URL", "")
	cfg, err := config.NewFromEnv("1.0.0")
	require.NoError(t, err)
	servicelocator.Init(cfg)

	handler, err := newHandler("1.0.0")
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tests := []struct {
		origin      string
		shouldAllow bool
	}{
		{"wails://wails", true},
		{"wails://wails.localhost:34115", true},
		{"http://wails.localhost:34115", true},
		{"http://localhost:8002", true},
		{"https://localhost:5173", true},

		// not valid, should not be allowed
		{"http://randomsite.com", false},
		{"http://wails.localhost:8001", false},
	}

	for _, tc := range tests {
		t.Run(tc.origin, func(t *testing.T) {
			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/v1/version", nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tc.origin)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			if tc.shouldAllow {
				require.Equal(t, tc.origin, resp.Header.Get("Access-Control-Allow-Origin"))
			} else {
				require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
