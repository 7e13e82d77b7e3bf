package restart

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelaunchMissingExecutable(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing"), []string{"missing"})

	err := r.Relaunch()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot relaunch")
}

func TestNewDefaultsArgs(t *testing.T) {
	r := New("", nil)
	require.NotEmpty(t, r.args)
}
