package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) (dataDir, configDir string) {
	dataDir = t.TempDir()
	configDir = t.TempDir()
	t.Setenv(envPrefix+"DATA_DIR", dataDir)
	t.Setenv(envPrefix+"CONFIG_DIR", configDir)
	t.Setenv(envPrefix+"FEED_URL", "")
	t.Setenv(envPrefix+"TARGET", "")
	t.Setenv(envPrefix+"STARTUP_DELAY", "")
	t.Setenv(envPrefix+"DISABLE", "")
	return dataDir, configDir
}

func TestNewFromEnvDefaults(t *testing.T) {
	dataDir, configDir := setupEnv(t)

	c, err := NewFromEnv("1.0.0")
	require.NoError(t, err)
	require.Equal(t, dataDir, c.DataDir().String())
	require.Equal(t, configDir, c.ConfigDir().String())
	require.Equal(t, filepath.Join(dataDir, "properties.msgpack"), c.SettingsFile().String())
	require.Equal(t, 5*time.Second, c.StartupDelay())
	require.Nil(t, c.Target())
	require.False(t, c.UpdaterAvailable(), "no feed configured")
}

func TestNewFromEnvConfigFile(t *testing.T) {
	_, configDir := setupEnv(t)
	target := filepath.Join(t.TempDir(), "app")
	content := "feed_url: https://example.com/latest.json\ntarget: " + target + "\nstartup_delay: 10s\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644))

	c, err := NewFromEnv("1.0.0")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/latest.json", c.FeedURL())
	require.Equal(t, target, c.Target().String())
	require.Equal(t, 10*time.Second, c.StartupDelay())
	require.True(t, c.UpdaterAvailable())

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv(envPrefix+"FEED_URL", "https://mirror.example.com/latest.json")
		t.Setenv(envPrefix+"STARTUP_DELAY", "1s")

		c, err := NewFromEnv("1.0.0")
		require.NoError(t, err)
		require.Equal(t, "https://mirror.example.com/latest.json", c.FeedURL())
		require.Equal(t, time.Second, c.StartupDelay())
	})

	t.Run("unknown field", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("feed: x\n"), 0644))

		_, err := NewFromEnv("1.0.0")
		require.Error(t, err)
	})
}

func TestUpdaterAvailable(t *testing.T) {
	testCases := []struct {
		name     string
		feedURL  string
		disable  string
		version  string
		expected bool
	}{
		{name: "release build with feed", feedURL: "https://example.com", version: "1.0.0", expected: true},
		{name: "dev build", feedURL: "https://example.com", version: DevVersion},
		{name: "no feed", version: "1.0.0"},
		{name: "disabled", feedURL: "https://example.com", disable: "true", version: "1.0.0"},
		{name: "explicitly enabled", feedURL: "https://example.com", disable: "false", version: "1.0.0", expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t)
			t.Setenv(envPrefix+"FEED_URL", tc.feedURL)
			t.Setenv(envPrefix+"DISABLE", tc.disable)

			c, err := NewFromEnv(tc.version)
			require.NoError(t, err)
			require.Equal(t, tc.expected, c.UpdaterAvailable())
		})
	}
}

func TestInvalidValues(t *testing.T) {
	t.Run("startup delay", func(t *testing.T) {
		setupEnv(t)
		t.Setenv(envPrefix+"STARTUP_DELAY", "soon")
		_, err := NewFromEnv("1.0.0")
		require.Error(t, err)
	})

	t.Run("negative startup delay", func(t *testing.T) {
		setupEnv(t)
		t.Setenv(envPrefix+"STARTUP_DELAY", "-1s")
		_, err := NewFromEnv("1.0.0")
		require.Error(t, err)
	})

	t.Run("disable", func(t *testing.T) {
		setupEnv(t)
		t.Setenv(envPrefix+"DISABLE", "maybe")
		_, err := NewFromEnv("1.0.0")
		require.Error(t, err)
	})
}
