package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/daemonclient"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/servicelocator"
	"github.com/arduino/arduino-app-updater/cmd/feedback"
	"github.com/arduino/arduino-app-updater/cmd/i18n"
	appupdate "github.com/arduino/arduino-app-updater/internal/update"
	"github.com/arduino/arduino-app-updater/pkg/x"
)

func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for, install and apply application updates",
	}

	cmd.AddCommand(
		newCheckCmd(),
		newInstallCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newRestartCmd(),
	)

	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Query the release feed for a newer version",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			state := check(cmd.Context())
			feedback.PrintResult(stateResult{State: state})
		},
	}
}

func newInstallCmd() *cobra.Command {
	var forceYes bool
	var restartAfter bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and install the latest version, replacing the current executable",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := check(cmd.Context())
			if state.Status != appupdate.StatusAvailable {
				feedback.PrintResult(stateResult{State: state})
				return nil
			}

			feedback.Print(i18n.Tr("Version %s is available (current: %s).", state.Release.Version, state.Release.CurrentVersion))
			if !forceYes {
				yes, err := confirm(i18n.Tr("Do you want to install it? (yes/no)"))
				if err != nil {
					return err
				}
				if !yes {
					return nil
				}
			}

			state = install(cmd.Context(), state.Release)
			if state.Status == appupdate.StatusError {
				feedback.FatalResult(stateResult{State: state}, feedback.ErrNetwork)
			}
			feedback.PrintResult(stateResult{State: state})

			if restartAfter {
				// Restart does not return on success.
				manager := servicelocator.GetUpdateManager()
				manager.Restart()
				feedback.FatalResult(stateResult{State: manager.State()}, feedback.ErrGeneric)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceYes, "yes", false, "Automatically confirm all prompts")
	cmd.Flags().BoolVar(&restartAfter, "restart", false, "Relaunch the application once the update is installed")

	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the update state of the running daemon",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			client := daemonClient(cmd)
			state, err := client.State(cmd.Context())
			if err != nil {
				feedback.Fatal(i18n.Tr("cannot reach the daemon: %v", err), feedback.ErrNetwork)
			}
			feedback.PrintResult(stateResult{State: state})
		},
	}
	cmd.Flags().String("port", daemonclient.DefaultPort, "The daemon network port")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var untilDone bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the update state changes of the running daemon",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			client := daemonClient(cmd)
			err := client.Watch(cmd.Context(), func(state appupdate.State) bool {
				feedback.PrintResult(stateResult{State: state, compact: true})
				return !untilDone || !state.Done()
			})
			if err != nil {
				feedback.Fatal(i18n.Tr("cannot watch the daemon: %v", err), feedback.ErrNetwork)
			}
		},
	}
	cmd.Flags().String("port", daemonclient.DefaultPort, "The daemon network port")
	cmd.Flags().BoolVar(&untilDone, "until-done", true, "Stop once the update is ready or failed")
	return cmd
}

func newRestartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Ask the running daemon to relaunch itself on the installed update",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			client := daemonClient(cmd)
			state, err := client.Restart(cmd.Context())
			if err != nil {
				feedback.Fatal(i18n.Tr("cannot restart the daemon: %v", err), feedback.ErrNetwork)
			}
			feedback.Print(i18n.Tr("Restarting on version %s", state.Release.Version))
		},
	}
	cmd.Flags().String("port", daemonclient.DefaultPort, "The daemon network port")
	return cmd
}

func daemonClient(cmd *cobra.Command) *daemonclient.Client {
	port, _ := cmd.Flags().GetString("port")
	return daemonclient.New(nil, port)
}

// check runs a check on the local manager and exits on failure.
func check(ctx context.Context) appupdate.State {
	if servicelocator.GetUpdateService() == nil {
		feedback.FatalError(appupdate.ErrServiceUnavailable, feedback.ErrServiceUnavailable)
	}

	manager := servicelocator.GetUpdateManager()
	manager.CheckForUpdate(ctx)

	state := manager.State()
	if state.Status == appupdate.StatusError {
		feedback.FatalResult(stateResult{State: state}, feedback.ErrNetwork)
	}
	return state
}

func install(ctx context.Context, release *appupdate.Release) appupdate.State {
	manager := servicelocator.GetUpdateManager()

	states := manager.Subscribe()
	defer manager.Unsubscribe(states)

	if err := manager.StartDownloadAndInstall(ctx); err != nil {
		feedback.FatalError(err, feedback.ErrGeneric)
	}

	lastProgress := -1
	for state := range states {
		switch state.Status {
		case appupdate.StatusDownloading, appupdate.StatusReady:
			if state.DownloadProgress != lastProgress {
				lastProgress = state.DownloadProgress
				feedback.Printf("%s %3d%% %s", x.Bar(state.DownloadProgress, 30), state.DownloadProgress, sizeOf(release))
			}
		}
		if state.Done() {
			return state
		}
	}
	return manager.State()
}

func sizeOf(r *appupdate.Release) string {
	if r == nil || r.Size <= 0 {
		return ""
	}
	return x.ToHumanMiB(r.Size)
}

func confirm(question string) (bool, error) {
	feedback.Print(question)
	var answer string
	if _, err := fmt.Scanf("%s\n", &answer); err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
