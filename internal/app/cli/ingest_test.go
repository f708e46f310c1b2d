package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/image-rag/internal/core/ingest"
)

func writeLocalFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestStageLocalFiles_CopiesAndPreservesOriginals(t *testing.T) {
	srcDir := t.TempDir()
	tempDir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\nfake image payload")

	paths := []string{
		writeLocalFile(t, srcDir, "one.png", png),
		writeLocalFile(t, srcDir, "two.png", png),
	}

	files, err := stageLocalFiles(tempDir, paths)
	require.NoError(t, err)
	require.Len(t, files, 2)

	for i, file := range files {
		assert.Equal(t, filepath.Base(paths[i]), file.Filename)
		assert.Equal(t, "image/png", file.MimeType)

		// コピーが一時領域に存在し、元ファイルも残っている
		_, err := os.Stat(file.Path)
		assert.NoError(t, err)
		_, err = os.Stat(paths[i])
		assert.NoError(t, err)
	}
}

func TestStageLocalFiles_FailureRemovesStagedCopies(t *testing.T) {
	srcDir := t.TempDir()
	tempDir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\nfake image payload")

	paths := []string{
		writeLocalFile(t, srcDir, "one.png", png),
		writeLocalFile(t, srcDir, "two.png", png),
		writeLocalFile(t, srcDir, "notes.txt", []byte("plain text, not an image")),
	}

	_, err := stageLocalFiles(tempDir, paths)
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrInvalidFile)

	// 失敗前にコピー済みだった一時ファイルも残っていない
	entries, readErr := os.ReadDir(tempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
