package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout   = 3 * time.Second
	lockRetryWait = 100 * time.Millisecond
)

type unlockFunc func() error

func noopUnlock() error { return nil }

// acquire waits for the lock up to lockTimeout. A lock that cannot be taken in
// time is assumed stale: its file is removed and the caller gets an error.
func acquire(l *flock.Flock, try func(context.Context, time.Duration) (bool, error), kind string) (unlockFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := try(ctx, lockRetryWait)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return noopUnlock, fmt.Errorf("failed trying to acquire %s for %s: %w", kind, l.Path(), err)
		}
		if err := l.Unlock(); err != nil {
			slog.Error("failed to unlock file lock", slog.String("path", l.Path()), slog.Any("error", err))
		}
		if err := os.Remove(l.Path()); err != nil {
			slog.Error("failed to delete lock file", slog.String("path", l.Path()), slog.Any("error", err))
		}
		slog.Warn("lock file removed due to timeout", slog.String("path", l.Path()))
		locked = false
	}
	if !locked {
		return noopUnlock, fmt.Errorf("unable to acquire %s for %s", kind, l.Path())
	}

	return func() error {
		if err := l.Unlock(); err != nil {
			return fmt.Errorf("failed to unlock file lock for %s: %w", l.Path(), err)
		}
		return nil
	}, nil
}

func getWriteLock(path string) (unlockFunc, error) {
	l := flock.New(path + ".lock")
	return acquire(l, l.TryLockContext, "write lock")
}

func getReadLock(path string) (unlockFunc, error) {
	l := flock.New(path + ".lock")
	return acquire(l, l.TryRLockContext, "read lock")
}
