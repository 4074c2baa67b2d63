package viewed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Add("p1", "p2"))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, reopened.Contains("p1"))
	assert.True(t, reopened.Contains("p2"))
	assert.False(t, reopened.Contains("p3"))
	assert.Equal(t, []string{"p1", "p2"}, reopened.All())
}

func TestSetDeduplicates(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Add("p1"))
	require.NoError(t, s.Add("p1", "p2", "p2"))
	assert.Equal(t, 2, s.Len())
}

func TestSetIgnoresEmptyIDs(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Add("", "p1", ""))
	assert.Equal(t, []string{"p1"}, s.All())
}

func TestSetEnforcesLimit(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenWithLimit(dir, 3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(fmt.Sprintf("p%d", i)))
	}

	// Oldest ids are evicted first.
	assert.Equal(t, []string{"p2", "p3", "p4"}, s.All())
	assert.False(t, s.Contains("p0"))
	assert.False(t, s.Contains("p1"))
}

func TestOpenDiscardsStoredDuplicates(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal([]string{"p1", "p2", "p1"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0o644))

	s, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, s.All())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}
