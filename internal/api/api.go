package api

import (
	"net/http"

	"github.com/arduino/arduino-app-updater/internal/api/handlers"
	"github.com/arduino/arduino-app-updater/internal/settings"
	"github.com/arduino/arduino-app-updater/internal/update"
)

func NewHTTPRouter(
	version string,
	updater *update.Manager,
	store *settings.Store,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /v1/version", handlers.HandleVersion(version))

	mux.Handle("GET /v1/update", handlers.HandleUpdateState(updater))
	mux.Handle("POST /v1/update/check", handlers.HandleUpdateCheck(updater))
	mux.Handle("POST /v1/update/install", handlers.HandleUpdateInstall(updater))
	mux.Handle("POST /v1/update/restart", handlers.HandleUpdateRestart(updater))
	mux.Handle("GET /v1/update/events", handlers.HandleUpdateEvents(updater))
	mux.Handle("GET /v1/update/ws", handlers.HandleUpdateWS(updater))

	mux.Handle("GET /v1/settings", handlers.HandleSettingsGet(store))
	mux.Handle("PUT /v1/settings/auto-update", handlers.HandleAutoUpdateSet(store))

	return mux
}
