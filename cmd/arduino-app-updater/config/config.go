package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arduino/arduino-app-updater/cmd/feedback"
	"github.com/arduino/arduino-app-updater/internal/config"
)

func NewConfigCmd(cfg config.Configuration) *cobra.Command {
	appCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage arduino-app-updater config",
	}

	appCmd.AddCommand(newConfigGetCmd(cfg))

	return appCmd
}

func newConfigGetCmd(cfg config.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "get configuration",
		Run: func(cmd *cobra.Command, args []string) {
			feedback.PrintResult(newConfigResult(cfg))
		},
	}
}

type configResult struct {
	ConfigDir        string `json:"config_dir"`
	DataDir          string `json:"data_dir"`
	SettingsFile     string `json:"settings_file"`
	FeedURL          string `json:"feed_url,omitempty"`
	Target           string `json:"target,omitempty"`
	StartupDelay     string `json:"startup_delay"`
	UpdaterAvailable bool   `json:"updater_available"`
}

func newConfigResult(cfg config.Configuration) configResult {
	res := configResult{
		ConfigDir:        cfg.ConfigDir().String(),
		DataDir:          cfg.DataDir().String(),
		SettingsFile:     cfg.SettingsFile().String(),
		FeedURL:          cfg.FeedURL(),
		StartupDelay:     cfg.StartupDelay().String(),
		UpdaterAvailable: cfg.UpdaterAvailable(),
	}
	if t := cfg.Target(); t != nil {
		res.Target = t.String()
	}
	return res
}

func (r configResult) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Config Directory:  %s\n", r.ConfigDir))
	b.WriteString(fmt.Sprintf("Data Directory:    %s\n", r.DataDir))
	b.WriteString(fmt.Sprintf("Settings File:     %s\n", r.SettingsFile))
	b.WriteString(fmt.Sprintf("Release Feed:      %s\n", orNone(r.FeedURL)))
	b.WriteString(fmt.Sprintf("Target:            %s\n", orNone(r.Target)))
	b.WriteString(fmt.Sprintf("Startup Delay:     %s\n", r.StartupDelay))
	b.WriteString(fmt.Sprintf("Updater Available: %t\n", r.UpdaterAvailable))

	return b.String()
}

func (r configResult) Data() any {
	return r
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
