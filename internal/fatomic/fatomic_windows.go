package fatomic

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFile is not atomic on Windows: renameio does not support it.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

// Replace writes into a temporary file next to filename, moves the current
// file aside and renames the new one into place. A running executable cannot
// be overwritten on Windows but it can be renamed, so the old copy is only
// removed on a best effort basis.
func Replace(filename string, perm os.FileMode, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".new-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}

	old := filename + ".old"
	_ = os.Remove(old)
	if err := os.Rename(filename, old); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		if restoreErr := os.Rename(old, filename); restoreErr != nil {
			slog.Error("failed to restore previous file", slog.String("path", filename), slog.Any("error", restoreErr))
		}
		return err
	}
	if err := os.Remove(old); err != nil {
		slog.Debug("previous file still in use", slog.String("path", old), slog.Any("error", err))
	}
	return nil
}
