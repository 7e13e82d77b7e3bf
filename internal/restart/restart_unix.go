//go:build !windows

package restart

import (
	"fmt"
	"syscall"
)

func relaunch(exe string, args []string, env []string) error {
	if err := syscall.Exec(exe, args, env); err != nil {
		return fmt.Errorf("failed to exec %s: %w", exe, err)
	}
	return nil
}
