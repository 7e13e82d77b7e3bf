package restart

import (
	"fmt"
	"os"
	"os/exec"
)

func relaunch(exe string, args []string, env []string) error {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	cmd := exec.Command(exe, rest...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", exe, err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to detach %s: %w", exe, err)
	}
	os.Exit(0)
	return nil
}
