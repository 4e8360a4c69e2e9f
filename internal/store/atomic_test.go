package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic_FirstWrite(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeFileAtomic(dir, "project.json", []byte(`{"a":1}`), metadataBack))

	data, err := os.ReadFile(filepath.Join(dir, "project.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "project.json"+metadataBack))
	assert.True(t, os.IsNotExist(err), "no backup should exist after a clean write")
}

func TestWriteFileAtomic_Overwrite(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeFileAtomic(dir, "project.json", []byte("old"), metadataBack))
	require.NoError(t, writeFileAtomic(dir, "project.json", []byte("new"), metadataBack))

	data, err := os.ReadFile(filepath.Join(dir, "project.json"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	_, err = os.Stat(filepath.Join(dir, "project.json"+metadataBack))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic_NoTempResidue(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeFileAtomic(dir, "x.flow", []byte("{}"), flowBack))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.flow", entries[0].Name())
}

func TestWriteFileAtomic_FailedReplaceLeavesCanonicalIntact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFileAtomic(dir, "project.json", []byte("stable"), metadataBack))

	// Occupy the backup name with a directory so the write fails after the
	// temp file exists but before the canonical file is replaced.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "project.json"+metadataBack), 0o755))

	err := writeFileAtomic(dir, "project.json", []byte("replacement"), metadataBack)
	require.Error(t, err)
	assert.True(t, IsPersistence(err))

	data, err := os.ReadFile(filepath.Join(dir, "project.json"))
	require.NoError(t, err)
	assert.Equal(t, "stable", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, ent := range entries {
		assert.False(t, strings.HasPrefix(ent.Name(), "tmp-"), ent.Name())
	}
}

func TestReadWithBackup_PrefersCanonical(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("canonical"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"+metadataBack), []byte("backup"), 0o644))

	data, err := readWithBackup(filepath.Join(dir, "f"), metadataBack)
	require.NoError(t, err)
	assert.Equal(t, "canonical", string(data))
}

func TestReadWithBackup_FallsBackAfterInterruptedWrite(t *testing.T) {
	// Simulate a crash between the rename-aside and the promote: only the
	// backup survives.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"+metadataBack), []byte("backup"), 0o644))

	data, err := readWithBackup(filepath.Join(dir, "f"), metadataBack)
	require.NoError(t, err)
	assert.Equal(t, "backup", string(data))
}

func TestReadWithBackup_BothMissing(t *testing.T) {
	_, err := readWithBackup(filepath.Join(t.TempDir(), "f"), metadataBack)
	assert.True(t, IsPersistence(err))
}
