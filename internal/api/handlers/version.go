package handlers

import (
	"net/http"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/pkg/render"
)

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.EncodeResponse(w, http.StatusOK, models.VersionResponse{Version: version})
	}
}
