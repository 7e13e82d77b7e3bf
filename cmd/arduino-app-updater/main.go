// This file is part of arduino-app-updater.
//
// Copyright 2025 ARDUINO SA (http://www.arduino.cc/)
//
// This software is released under the GNU General Public License version 3,
// which covers the main part of arduino-app-updater.
// The terms of this license can be found at:
// https://www.gnu.org/licenses/gpl-3.0.en.html
//
// You can be released from the requirements of the above licenses by purchasing
// a commercial license. Buying such a license is mandatory if you want to
// modify or otherwise use the software for commercial activities involving the
// Arduino software without disclosing the source code of your own applications.
// To purchase a commercial license, send an email to license@arduino.cc.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.bug.st/cleanup"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/completion"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/config"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/daemon"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/servicelocator"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/settings"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/update"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/version"
	"github.com/arduino/arduino-app-updater/cmd/feedback"
	"github.com/arduino/arduino-app-updater/cmd/i18n"
	cfg "github.com/arduino/arduino-app-updater/internal/config"
)

// Version will be set a build time with -ldflags
var Version string = cfg.DevVersion
var format string
var logLevelStr string

func run(configuration cfg.Configuration) error {
	servicelocator.Init(configuration)
	i18n.Init(configuration.ConfigDir().Join("locale"))

	rootCmd := &cobra.Command{
		Use:   "arduino-app-updater",
		Short: "Check, install and apply application updates",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			outputFormat, ok := feedback.ParseOutputFormat(format)
			if !ok {
				feedback.Fatal(i18n.Tr("Invalid output format: %s", format), feedback.ErrBadArgument)
			}
			feedback.SetFormat(outputFormat)

			logLevel, err := ParseLogLevel(logLevelStr)
			if err != nil {
				feedback.FatalError(err, feedback.ErrBadArgument)
			}
			slog.SetLogLoggerLevel(logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format (text, json, jsonmini)")
	rootCmd.PersistentFlags().StringVar(&logLevelStr, "log-level", "error", "Set the log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		completion.NewCompletionCommand(),
		config.NewConfigCmd(configuration),
		daemon.NewDaemonCmd(Version),
		settings.NewSettingsCmd(),
		update.NewUpdateCmd(),
		version.NewVersionCmd(Version),
	)

	ctx := context.Background()
	ctx, _ = cleanup.InterruptableContext(ctx)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	configuration, err := cfg.NewFromEnv(Version)
	if err != nil {
		feedback.Fatal(fmt.Sprintf("invalid config: %s", err), feedback.ErrGeneric)
	}

	if err := run(configuration); err != nil {
		feedback.FatalError(err, feedback.ErrGeneric)
	}
}

func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(level))
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return l, nil
}
