package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/arduino/arduino-app-updater/internal/fatomic"
)

var ErrInvalidKey = errors.New("invalid settings key")

const (
	KeyAutoUpdateEnabled = "auto-update-enabled"
	KeyLastUpdateCheck   = "last-update-check"
)

// Store persists settings in a msgpack encoded map of raw values. Every
// operation takes a file lock, so the same file can be shared by the daemon
// and CLI invocations.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// AutoUpdateEnabled defaults to true when the setting was never written.
func (s *Store) AutoUpdateEnabled() (bool, error) {
	raw, found, err := s.Get(KeyAutoUpdateEnabled)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	var enabled bool
	if err := msgpack.Unmarshal(raw, &enabled); err != nil {
		return false, fmt.Errorf("decoding %s: %w", KeyAutoUpdateEnabled, err)
	}
	return enabled, nil
}

func (s *Store) SetAutoUpdateEnabled(enabled bool) error {
	raw, err := msgpack.Marshal(enabled)
	if err != nil {
		return err
	}
	return s.Upsert(KeyAutoUpdateEnabled, raw)
}

// LastUpdateCheck returns false when no check was ever recorded.
func (s *Store) LastUpdateCheck() (time.Time, bool, error) {
	raw, found, err := s.Get(KeyLastUpdateCheck)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	var millis int64
	if err := msgpack.Unmarshal(raw, &millis); err != nil {
		return time.Time{}, false, fmt.Errorf("decoding %s: %w", KeyLastUpdateCheck, err)
	}
	return time.UnixMilli(millis), true, nil
}

func (s *Store) SetLastUpdateCheck(t time.Time) error {
	raw, err := msgpack.Marshal(t.UnixMilli())
	if err != nil {
		return err
	}
	return s.Upsert(KeyLastUpdateCheck, raw)
}

func (s *Store) Keys() ([]string, error) {
	unlock, err := getReadLock(s.path)
	if err != nil {
		return nil, err
	}
	defer s.release(unlock)

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := slices.Collect(maps.Keys(values))
	slices.Sort(keys)
	return keys, nil
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	unlock, err := getReadLock(s.path)
	if err != nil {
		return nil, false, err
	}
	defer s.release(unlock)

	values, err := s.read()
	if err != nil {
		return nil, false, err
	}
	value, found := values[key]
	return value, found, nil
}

func (s *Store) Upsert(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	unlock, err := getWriteLock(s.path)
	if err != nil {
		return err
	}
	defer s.release(unlock)

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Delete reports whether the key was present.
func (s *Store) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	unlock, err := getWriteLock(s.path)
	if err != nil {
		return false, err
	}
	defer s.release(unlock)

	values, err := s.read()
	if err != nil {
		return false, err
	}
	if _, found := values[key]; !found {
		return false, nil
	}
	delete(values, key)
	return true, s.write(values)
}

func (s *Store) read() (map[string][]byte, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]byte), nil
		}
		return nil, err
	}
	if len(content) == 0 {
		return make(map[string][]byte), nil
	}
	var values map[string][]byte
	if err := msgpack.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("decoding settings file %s: %w", s.path, err)
	}
	if values == nil {
		values = make(map[string][]byte)
	}
	return values, nil
}

func (s *Store) write(values map[string][]byte) error {
	data, err := msgpack.Marshal(values)
	if err != nil {
		return err
	}
	return fatomic.WriteFile(s.path, data, 0644)
}

func (s *Store) release(unlock unlockFunc) {
	if err := unlock(); err != nil {
		slog.Error("failed to release settings lock", slog.String("file", s.path), slog.Any("error", err))
	}
}

const maxKeyLength = 100

var keyValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("key exceeds max length of %d characters", maxKeyLength)
	}
	if !keyValidationRegex.MatchString(key) {
		return fmt.Errorf("key '%s' contains invalid characters; only alphanumeric, '-', '_', and '.' are allowed", key)
	}
	return nil
}
