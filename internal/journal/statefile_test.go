package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStatefile(t *testing.T) {
	t.Run("missing file is created with empty cursor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")

		sf, err := LoadStatefile(path)
		require.NoError(t, err)
		assert.Equal(t, "", sf.Cursor())
		assert.FileExists(t, path)
	})

	t.Run("reads stored cursor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cursor: s=abc\n"), 0o644))

		sf, err := LoadStatefile(path)
		require.NoError(t, err)
		assert.Equal(t, "s=abc", sf.Cursor())
	})

	t.Run("unparsable file is emptied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cursor: [unclosed"), 0o644))

		sf, err := LoadStatefile(path)
		require.NoError(t, err)
		assert.Equal(t, "", sf.Cursor())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing-dir", "state.yaml")
		_, err := LoadStatefile(path)

		var sfe *StateFileError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, "create", sfe.Op)
		assert.Equal(t, path, sfe.Path)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Contains(t, err.Error(), "cannot create state file")
	})
}

func TestUpdateCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	sf, err := LoadStatefile(path)
	require.NoError(t, err)

	require.NoError(t, sf.UpdateCursor("s=1;i=2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cursor: s=1;i=2\n", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestResetStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("s=stale"), 0o644))

	require.NoError(t, ResetStateFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestResetStateFileError(t *testing.T) {
	err := ResetStateFile(filepath.Join(t.TempDir(), "missing-dir", "state"))

	var sfe *StateFileError
	require.True(t, errors.As(err, &sfe))
	assert.Equal(t, "reset", sfe.Op)
}

func TestParseStateFormat(t *testing.T) {
	f, err := ParseStateFormat("")
	require.NoError(t, err)
	assert.Equal(t, StateJournal, f)

	f, err = ParseStateFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, StateYAML, f)

	_, err = ParseStateFormat("json")
	assert.Error(t, err)
}

func TestLastCursor(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		expected string
	}{
		{"no cursor", "line\n", ""},
		{"trailing cursor", "line\n-- cursor: s=1\n", "s=1"},
		{"last one wins", "-- cursor: s=1\nline\n-- cursor: s=2\n", "s=2"},
		{"no trailing newline", "line\n-- cursor: s=3", "s=3"},
		{"must start a line", "text -- cursor: s=4\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lastCursor([]byte(tt.out)))
		})
	}
}
