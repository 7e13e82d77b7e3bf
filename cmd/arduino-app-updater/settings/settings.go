package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/servicelocator"
	"github.com/arduino/arduino-app-updater/cmd/feedback"
	"github.com/arduino/arduino-app-updater/cmd/i18n"
	"github.com/arduino/arduino-app-updater/internal/settings"
	"github.com/arduino/arduino-app-updater/pkg/tablestyle"
)

func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the updater settings",
		Long:  "Manage the persisted updater settings, shared with the running daemon.",
	}

	cmd.AddCommand(newGetCmd(), newSetCmd(), newListCmd(), newResetCmd())

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the auto-update preference and the last successful check",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			res, err := load(servicelocator.GetSettingsStore())
			if err != nil {
				feedback.Fatal(err.Error(), feedback.ErrGeneric)
			}
			feedback.PrintResult(res)
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set auto-update <true|false>",
		Short:     "Enable or disable the automatic update check at startup",
		ValidArgs: []string{"auto-update"},
		Args:      cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if args[0] != "auto-update" {
				feedback.Fatal(i18n.Tr("unknown setting: %s", args[0]), feedback.ErrBadArgument)
			}
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				feedback.Fatal(i18n.Tr("invalid value %q: expected true or false", args[1]), feedback.ErrBadArgument)
			}

			store := servicelocator.GetSettingsStore()
			if err := store.SetAutoUpdateEnabled(enabled); err != nil {
				feedback.Fatal(err.Error(), feedback.ErrGeneric)
			}
			res, err := load(store)
			if err != nil {
				feedback.Fatal(err.Error(), feedback.ErrGeneric)
			}
			feedback.PrintResult(res)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the keys stored in the settings file",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			store := servicelocator.GetSettingsStore()
			keys, err := store.Keys()
			if err != nil {
				feedback.Fatal(err.Error(), feedback.ErrGeneric)
			}
			feedback.PrintResult(keysResult{File: store.Path(), Keys: keys})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <key>",
		Short: "Remove a stored setting, restoring its default",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			keys, err := servicelocator.GetSettingsStore().Keys()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return keys, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			deleted, err := servicelocator.GetSettingsStore().Delete(args[0])
			if err != nil {
				feedback.Fatal(err.Error(), feedback.ErrBadArgument)
			}
			if !deleted {
				feedback.Warnf("%s", i18n.Tr("Setting %s was not set", args[0]))
				return
			}
			feedback.Print(i18n.Tr("Setting %s removed", args[0]))
		},
	}
}

func load(store *settings.Store) (settingsResult, error) {
	enabled, err := store.AutoUpdateEnabled()
	if err != nil {
		return settingsResult{}, err
	}
	last, found, err := store.LastUpdateCheck()
	if err != nil {
		return settingsResult{}, err
	}
	res := settingsResult{AutoUpdateEnabled: enabled}
	if found {
		res.LastUpdateCheck = &last
	}
	return res, nil
}

type settingsResult struct {
	AutoUpdateEnabled bool       `json:"auto_update_enabled"`
	LastUpdateCheck   *time.Time `json:"last_update_check,omitempty"`
}

func (r settingsResult) String() string {
	last := i18n.Tr("never")
	if r.LastUpdateCheck != nil {
		last = r.LastUpdateCheck.Local().Format(time.DateTime)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Auto update:       %t\n", r.AutoUpdateEnabled)
	fmt.Fprintf(&b, "Last update check: %s", last)
	return b.String()
}

func (r settingsResult) Data() any {
	return r
}

type keysResult struct {
	File string   `json:"file"`
	Keys []string `json:"keys"`
}

func (r keysResult) String() string {
	if len(r.Keys) == 0 {
		return i18n.Tr("No settings stored in %s", r.File)
	}
	t := table.NewWriter()
	t.SetStyle(tablestyle.CustomCleanStyle)
	t.AppendHeader(table.Row{"KEY"})
	for _, k := range r.Keys {
		t.AppendRow(table.Row{k})
	}
	return t.Render()
}

func (r keysResult) Data() any {
	return r
}
