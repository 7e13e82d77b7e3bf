package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(filepath.Join(t.TempDir(), "properties.msgpack"))
}

func TestValidateKey(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "valid simple key", input: "key"},
		{name: "valid key with numbers", input: "test-key-1"},
		{name: "valid key with dot and underscore", input: "my_config.value"},
		{name: "key at max length", input: strings.Repeat("a", maxKeyLength)},
		{name: "empty key", input: "", expectError: true},
		{name: "key too long", input: strings.Repeat("a", maxKeyLength+1), expectError: true},
		{name: "key with invalid space", input: "my key", expectError: true},
		{name: "key with invalid symbols", input: "test!", expectError: true},
		{name: "key with slashes", input: "path/to/value", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateKey(tc.input)
			if tc.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAutoUpdateEnabled(t *testing.T) {
	s := newTestStore(t)

	enabled, err := s.AutoUpdateEnabled()
	require.NoError(t, err)
	require.True(t, enabled, "default must be enabled")

	require.NoError(t, s.SetAutoUpdateEnabled(false))
	enabled, err = s.AutoUpdateEnabled()
	require.NoError(t, err)
	require.False(t, enabled)

	require.NoError(t, s.SetAutoUpdateEnabled(true))
	enabled, err = s.AutoUpdateEnabled()
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestLastUpdateCheck(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.LastUpdateCheck()
	require.NoError(t, err)
	require.False(t, found)

	now := time.Date(2025, 5, 1, 10, 30, 0, 123456789, time.UTC)
	require.NoError(t, s.SetLastUpdateCheck(now))

	got, found, err := s.LastUpdateCheck()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.Equal(now.Truncate(time.Millisecond)))
}

func TestGenericOperations(t *testing.T) {
	s := newTestStore(t)

	keys, err := s.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, s.Upsert("b-key", []byte("2")))
	require.NoError(t, s.Upsert("a-key", []byte("1")))

	keys, err = s.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a-key", "b-key"}, keys)

	value, found, err := s.Get("a-key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	deleted, err := s.Delete("a-key")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete("a-key")
	require.NoError(t, err)
	require.False(t, deleted)

	_, found, err = s.Get("a-key")
	require.NoError(t, err)
	require.False(t, found)

	err = s.Upsert("bad key", nil)
	require.ErrorIs(t, err, ErrInvalidKey)
	_, _, err = s.Get("bad/key")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestCorruptedFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte{0xc1}, 0644))

	_, err := s.AutoUpdateEnabled()
	require.Error(t, err)
}

func TestEmptyFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0644))

	enabled, err := s.AutoUpdateEnabled()
	require.NoError(t, err)
	require.True(t, enabled)
}
