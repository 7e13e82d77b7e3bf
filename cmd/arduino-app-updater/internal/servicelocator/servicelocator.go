package servicelocator

import (
	"log/slog"
	"os"
	"sync"

	"github.com/arduino/arduino-app-updater/internal/config"
	"github.com/arduino/arduino-app-updater/internal/restart"
	"github.com/arduino/arduino-app-updater/internal/settings"
	"github.com/arduino/arduino-app-updater/internal/update"
	"github.com/arduino/arduino-app-updater/internal/update/feed"
)

var globalConfig config.Configuration

func Init(cfg config.Configuration) {
	globalConfig = cfg
}

var (
	GetSettingsStore = sync.OnceValue(func() *settings.Store {
		return settings.NewStore(globalConfig.SettingsFile().String())
	})

	// GetUpdateService returns nil when no release feed is configured.
	GetUpdateService = sync.OnceValue(func() update.Service {
		if globalConfig.FeedURL() == "" {
			slog.Debug("No release feed configured")
			return nil
		}
		return feed.New(feed.Config{
			URL:            globalConfig.FeedURL(),
			CurrentVersion: globalConfig.Version(),
			Target:         targetPath(),
		})
	})

	GetRestarter = sync.OnceValue(func() *restart.Relauncher {
		target := targetPath()
		if target == "" {
			return restart.New("", nil)
		}
		return restart.New(target, append([]string{target}, os.Args[1:]...))
	})

	GetUpdateManager = sync.OnceValue(func() *update.Manager {
		store := GetSettingsStore()
		return update.NewManager(
			GetUpdateService(),
			GetRestarter(),
			update.WithSettings(store, store),
			update.WithStartupDelay(globalConfig.StartupDelay()),
			update.WithEnvironment(globalConfig.UpdaterAvailable),
		)
	})
)

func targetPath() string {
	if t := globalConfig.Target(); t != nil {
		return t.String()
	}
	return ""
}
