package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohtostado/duperscooper/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStageAndRestoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	dupPath := filepath.Join(root, "album", "dup.mp3")
	bestPath := filepath.Join(root, "album", "best.flac")
	writeFile(t, dupPath, "duplicate content")
	writeFile(t, bestPath, "best content")

	batchUUID, results, err := Stage(root, []string{dupPath}, model.ModeTrack)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "staged", results[0].Status)

	_, err = os.Stat(dupPath)
	assert.True(t, os.IsNotExist(err), "expected the staged file to be removed from its original path")
	_, err = os.Stat(bestPath)
	require.NoError(t, err, "the kept file must be untouched")

	batches, err := List(root)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].ItemCount)
	assert.Equal(t, model.RestorationNone, batches[0].State, "expected restoration state 'none' before restore")

	restoreResults, err := Restore(root, batchUUID, RestoreOptions{})
	require.NoError(t, err)
	require.Len(t, restoreResults, 1)
	assert.Equal(t, "restored", restoreResults[0].Status)

	data, err := os.ReadFile(dupPath)
	require.NoError(t, err, "restored file missing")
	assert.Equal(t, "duplicate content", string(data))

	afterBatches, err := List(root)
	require.NoError(t, err)
	require.Len(t, afterBatches, 1)
	assert.True(t, afterBatches[0].Archived, "expected the fully-restored batch to be archived")
}

func TestRestoreRejectsTargetCollision(t *testing.T) {
	root := t.TempDir()
	dupPath := filepath.Join(root, "dup.mp3")
	writeFile(t, dupPath, "content")

	batchUUID, _, err := Stage(root, []string{dupPath}, model.ModeTrack)
	require.NoError(t, err)

	// Recreate a file at the original path before restoring.
	writeFile(t, dupPath, "a different file now occupies this path")

	results, err := Restore(root, batchUUID, RestoreOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "target collision", results[0].Status)

	data, _ := os.ReadFile(dupPath)
	assert.Equal(t, "a different file now occupies this path", string(data), "restore must never overwrite a colliding target file")
}

func TestStageRejectsPathsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "file.flac")
	writeFile(t, outsideFile, "x")

	_, results, err := Stage(root, []string{outsideFile}, model.ModeTrack)
	require.Error(t, err, "expected an error when nothing could be staged")
	require.Len(t, results, 1)
	assert.Equal(t, "outside_root", results[0].Status)
}

func TestEmptyKeepsLastKAndRemovesTheRest(t *testing.T) {
	root := t.TempDir()
	p1 := filepath.Join(root, "dup1.mp3")
	p2 := filepath.Join(root, "dup2.mp3")
	writeFile(t, p1, "content1")
	writeFile(t, p2, "content2")

	_, _, err := Stage(root, []string{p1}, model.ModeTrack)
	require.NoError(t, err)
	_, _, err = Stage(root, []string{p2}, model.ModeTrack)
	require.NoError(t, err)

	removed, err := Empty(root, EmptyOptions{KeepLastK: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "expected 1 batch removed (keeping the most recent)")

	batches, err := List(root)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}
