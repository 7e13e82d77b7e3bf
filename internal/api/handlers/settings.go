package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/internal/settings"
	"github.com/arduino/arduino-app-updater/pkg/render"
)

func HandleSettingsGet(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := readSettings(store)
		if err != nil {
			slog.Error("Unable to read settings", slog.String("error", err.Error()))
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: "unable to read settings"})
			return
		}
		render.EncodeResponse(w, http.StatusOK, resp)
	}
}

func HandleAutoUpdateSet(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req models.AutoUpdateRequest
		if err := render.DecodeRequest(r, &req); err != nil {
			render.EncodeResponse(w, http.StatusBadRequest, models.ErrorResponse{Details: err.Error()})
			return
		}
		if req.Enabled == nil {
			render.EncodeResponse(w, http.StatusBadRequest, models.ErrorResponse{Details: "missing field: enabled"})
			return
		}

		if err := store.SetAutoUpdateEnabled(*req.Enabled); err != nil {
			slog.Error("Failed to update auto-update setting", slog.String("error", err.Error()))
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: "failed to update settings"})
			return
		}

		resp, err := readSettings(store)
		if err != nil {
			slog.Error("Unable to read settings", slog.String("error", err.Error()))
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: "unable to read settings"})
			return
		}
		render.EncodeResponse(w, http.StatusOK, resp)
	}
}

func readSettings(store *settings.Store) (models.SettingsResponse, error) {
	enabled, err := store.AutoUpdateEnabled()
	if err != nil {
		return models.SettingsResponse{}, err
	}
	resp := models.SettingsResponse{AutoUpdateEnabled: enabled}

	last, found, err := store.LastUpdateCheck()
	if err != nil {
		return models.SettingsResponse{}, err
	}
	if found {
		resp.LastUpdateCheck = &last
	}
	return resp, nil
}
