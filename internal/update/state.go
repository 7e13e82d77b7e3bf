package update

import "time"

// Status is the phase of the self-update state machine.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusChecking    Status = "checking"
	StatusAvailable   Status = "available"
	StatusDownloading Status = "downloading"
	StatusReady       Status = "ready"
	StatusError       Status = "error"
)

// AllowedStatuses lists every status. gendoc uses it to build the OpenAPI enum.
func (s Status) AllowedStatuses() []Status {
	return []Status{StatusIdle, StatusChecking, StatusAvailable, StatusDownloading, StatusReady, StatusError}
}

// Release describes an update offered by the release feed.
type Release struct {
	Version        string    `json:"version"`
	CurrentVersion string    `json:"current_version"`
	Notes          string    `json:"notes,omitempty"`
	PublishedAt    time.Time `json:"pub_date,omitzero"`
	URL            string    `json:"url"`
	Size           int64     `json:"size,omitempty"`
}

// State is a read-only snapshot of the updater.
//
// Release is set only while Status is available, downloading or ready, and
// Error only while Status is error.
type State struct {
	Status           Status   `json:"status"`
	Release          *Release `json:"update,omitempty"`
	Error            string   `json:"error,omitempty"`
	DownloadProgress int      `json:"download_progress"`
}

func (s State) clone() State {
	if s.Release != nil {
		r := *s.Release
		s.Release = &r
	}
	return s
}

// Done reports whether the state is terminal for an install flow.
func (s State) Done() bool {
	return s.Status == StatusReady || s.Status == StatusError
}
