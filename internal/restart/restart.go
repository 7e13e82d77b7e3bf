// Package restart relaunches the application after an update was installed.
package restart

import (
	"fmt"
	"log/slog"
	"os"
)

// Relauncher replaces the running process with a fresh instance of the
// executable. On success Relaunch does not return.
type Relauncher struct {
	executable string
	args       []string
}

// New returns a Relauncher for executable, or for the running binary when
// executable is empty. args defaults to os.Args.
func New(executable string, args []string) *Relauncher {
	if args == nil {
		args = os.Args
	}
	return &Relauncher{executable: executable, args: args}
}

func (r *Relauncher) Relaunch() error {
	exe := r.executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}
	}
	if _, err := os.Stat(exe); err != nil {
		return fmt.Errorf("cannot relaunch %s: %w", exe, err)
	}
	slog.Info("Relaunching application", slog.String("executable", exe), slog.Any("args", r.args))
	return relaunch(exe, r.args, os.Environ())
}
