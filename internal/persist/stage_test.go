package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit_WritesAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "groups.txt")
	b := filepath.Join(dir, "rules.json")

	s := NewStage()
	s.Add(a, []byte("*Food\nGroceries\n"))
	s.Add(b, []byte("[]\n"))
	require.Equal(t, 2, s.Len())

	require.NoError(t, s.Commit())

	got, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "*Food\nGroceries\n", string(got))

	got, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(got))

	_, err = os.Stat(a + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp files must not survive a commit")
}

func TestCommit_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	s := NewStage()
	s.Add(path, []byte("new"))
	require.NoError(t, s.Commit())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestCommit_FailureLeavesTargetsUntouched(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(good, []byte("original"), 0o644))

	// A path inside a missing directory cannot be written.
	bad := filepath.Join(dir, "missing", "groups.txt")

	s := NewStage()
	s.Add(good, []byte("replaced"))
	s.Add(bad, []byte("never"))

	require.Error(t, s.Commit())

	got, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got), "no target may change when any write fails")

	_, err = os.Stat(good + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp files are cleaned up on failure")
}

func TestAdd_SamePathKeepsLatest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	s := NewStage()
	s.Add(path, []byte("first"))
	s.Add(path, []byte("second"))
	require.Equal(t, 1, s.Len())
	require.NoError(t, s.Commit())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestCommit_Empty(t *testing.T) {
	s := NewStage()
	assert.NoError(t, s.Commit())
}
