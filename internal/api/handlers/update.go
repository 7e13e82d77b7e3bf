package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/internal/update"
	"github.com/arduino/arduino-app-updater/pkg/render"
)

func HandleUpdateState(updater *update.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.EncodeResponse(w, http.StatusOK, updater.State())
	}
}

// HandleUpdateCheck runs a check and returns the resulting state. Check
// failures are part of the state, not of the HTTP status.
func HandleUpdateCheck(updater *update.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := updater.TryCheckForUpdate(r.Context()); err != nil {
			render.EncodeResponse(w, http.StatusConflict, models.ErrorResponse{Details: err.Error()})
			return
		}
		render.EncodeResponse(w, http.StatusOK, updater.State())
	}
}

func HandleUpdateInstall(updater *update.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := updater.StartDownloadAndInstall(context.WithoutCancel(r.Context()))
		switch {
		case errors.Is(err, update.ErrOperationAlreadyInProgress):
			render.EncodeResponse(w, http.StatusConflict, models.ErrorResponse{Details: err.Error()})
			return
		case errors.Is(err, update.ErrNoUpdateAvailable):
			render.EncodeResponse(w, http.StatusPreconditionFailed, models.ErrorResponse{Details: err.Error()})
			return
		case err != nil:
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: err.Error()})
			return
		}
		render.EncodeResponse(w, http.StatusAccepted, updater.State())
	}
}

// HandleUpdateRestart answers before handing control to the restarter, which
// replaces the process.
func HandleUpdateRestart(updater *update.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := updater.State()
		if state.Status != update.StatusReady {
			render.EncodeResponse(w, http.StatusPreconditionFailed, models.ErrorResponse{Details: "no update ready to be applied"})
			return
		}

		render.EncodeResponse(w, http.StatusAccepted, state)
		if err := http.NewResponseController(w).Flush(); err != nil {
			slog.Debug("Unable to flush restart response", slog.Any("error", err))
		}
		go updater.Restart()
	}
}

func HandleUpdateEvents(updater *update.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sseStream, err := render.NewSSEStream(r.Context(), w)
		if err != nil {
			slog.Error("Unable to create SSE stream", slog.String("error", err.Error()))
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: "unable to create SSE stream"})
			return
		}
		defer sseStream.Close()

		ch := updater.Subscribe()
		defer updater.Unsubscribe(ch)

		for {
			select {
			case state, ok := <-ch:
				if !ok {
					slog.Info("Update state channel closed, stopping SSE stream")
					return
				}
				if !sseStream.Send(render.SSEEvent{Type: "state", Data: state}) {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}
