//go:build !windows

package fatomic

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// Replace streams the new content of filename through write into a pending
// file in the same directory, then atomically renames it over filename.
// On failure filename is left untouched.
func Replace(filename string, perm os.FileMode, write func(io.Writer) error) error {
	f, err := renameio.NewPendingFile(filename, renameio.WithStaticPermissions(perm))
	if err != nil {
		return err
	}
	defer f.Cleanup()

	if err := write(f); err != nil {
		return err
	}
	return f.CloseAtomicallyReplace()
}
