package update

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/arduino/arduino-app-updater/cmd/i18n"
	appupdate "github.com/arduino/arduino-app-updater/internal/update"
	"github.com/arduino/arduino-app-updater/pkg/tablestyle"
	"github.com/arduino/arduino-app-updater/pkg/x"
)

type stateResult struct {
	State   appupdate.State
	compact bool
}

func (r stateResult) String() string {
	if r.compact {
		return r.line()
	}

	switch r.State.Status {
	case appupdate.StatusIdle:
		return i18n.Tr("No update available, you are running the latest version.")
	case appupdate.StatusError:
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(tablestyle.CustomCleanStyle)
	t.AppendRow(table.Row{"STATUS", colorStatus(r.State.Status)})
	if rel := r.State.Release; rel != nil {
		t.AppendRow(table.Row{"CURRENT", rel.CurrentVersion})
		t.AppendRow(table.Row{"LATEST", rel.Version})
		t.AppendRow(table.Row{"PUBLISHED", formatTime(rel.PublishedAt)})
		if rel.Size > 0 {
			t.AppendRow(table.Row{"SIZE", x.ToHumanMiB(rel.Size)})
		}
		if rel.Notes != "" {
			t.AppendRow(table.Row{"NOTES", rel.Notes})
		}
	}
	if r.State.Status == appupdate.StatusDownloading {
		t.AppendRow(table.Row{"PROGRESS", fmt.Sprintf("%d%%", r.State.DownloadProgress)})
	}
	return t.Render()
}

func (r stateResult) line() string {
	s := colorStatus(r.State.Status)
	switch r.State.Status {
	case appupdate.StatusAvailable, appupdate.StatusReady:
		s += " " + r.State.Release.Version
	case appupdate.StatusDownloading:
		s += fmt.Sprintf(" %s %3d%%", x.Bar(r.State.DownloadProgress, 30), r.State.DownloadProgress)
	case appupdate.StatusError:
		s += ": " + r.State.Error
	}
	return s
}

func (r stateResult) ErrorString() string {
	if r.compact || r.State.Status != appupdate.StatusError {
		return ""
	}
	return color.RedString(i18n.Tr("Error: %s", r.State.Error))
}

func (r stateResult) Data() any {
	return r.State
}

func colorStatus(s appupdate.Status) string {
	switch s {
	case appupdate.StatusAvailable:
		return color.YellowString(string(s))
	case appupdate.StatusReady:
		return color.GreenString(string(s))
	case appupdate.StatusError:
		return color.RedString(string(s))
	case appupdate.StatusChecking, appupdate.StatusDownloading:
		return color.CyanString(string(s))
	default:
		return string(s)
	}
}
