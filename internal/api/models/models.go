package models

import (
	"time"

	"github.com/arduino/arduino-app-updater/internal/update"
)

type ErrorResponse struct {
	Details string `json:"details"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

// UpdateState mirrors update.State on the wire.
type UpdateState = update.State

type SettingsResponse struct {
	AutoUpdateEnabled bool       `json:"auto_update_enabled"`
	LastUpdateCheck   *time.Time `json:"last_update_check,omitempty"`
}

type AutoUpdateRequest struct {
	Enabled *bool `json:"enabled"`
}
