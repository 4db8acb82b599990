package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/state"
)

type fixture struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

func defaultFixture() fixture {
	return fixture{Names: []string{}}
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "state-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	got := state.Load(filepath.Join(tmpDir, "absent.json"), defaultFixture)
	assert.Equal(t, defaultFixture(), got)
}

func TestLoad_CorruptedJSONReturnsDefault(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "state-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	got := state.Load(path, defaultFixture)
	assert.Equal(t, defaultFixture(), got)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "state-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "session.json")
	want := fixture{Count: 3, Names: []string{"a", "b", "c"}}

	ok := state.Save(path, want)
	require.True(t, ok)

	got := state.Load(path, defaultFixture)
	assert.Equal(t, want, got)
}

func TestSave_NoTempFileLeftBehind(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "state-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "session.json")
	require.True(t, state.Save(path, fixture{Count: 1, Names: []string{}}))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}

func TestSaveThenSaveAgain_SecondWriteIsNoopEquivalent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "state-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "session.json")
	v := fixture{Count: 5, Names: []string{"x"}}

	require.True(t, state.Save(path, v))
	first := state.Load(path, defaultFixture)

	require.True(t, state.Save(path, v))
	second := state.Load(path, defaultFixture)

	assert.Equal(t, first, second)
}
