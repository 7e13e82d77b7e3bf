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

package version

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/daemonclient"
	"github.com/arduino/arduino-app-updater/cmd/feedback"
)

const ProgramName = "Arduino App Updater"

func NewVersionCmd(clientVersion string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Arduino App Updater",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetString("port")

			client := daemonclient.New(&http.Client{Timeout: time.Second}, port)
			daemonVersion, err := client.Version(cmd.Context())
			if err != nil {
				feedback.Warnf("Warning: cannot get the running daemon version on %s:%s\n", daemonclient.DefaultHostname, port)
			}

			feedback.PrintResult(versionResult{
				Name:          ProgramName,
				Version:       clientVersion,
				DaemonVersion: daemonVersion,
			})
		},
	}
	cmd.Flags().String("port", daemonclient.DefaultPort, "The daemon network port")
	return cmd
}

type versionResult struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	DaemonVersion string `json:"daemon_version,omitempty"`
}

func (r versionResult) String() string {
	resultMessage := fmt.Sprintf("%s version %s", ProgramName, r.Version)

	if r.DaemonVersion != "" {
		resultMessage = fmt.Sprintf("%s\ndaemon version: %s",
			resultMessage, r.DaemonVersion)
	}
	return resultMessage
}

func (r versionResult) Data() any {
	return r
}
