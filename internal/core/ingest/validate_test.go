package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestValidateFile_DetectsPNG(t *testing.T) {
	path := writeFile(t, "photo.dat", []byte("\x89PNG\r\n\x1a\n0000000000"))

	mimeType, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestValidateFile_DetectsJPEG(t *testing.T) {
	path := writeFile(t, "photo.bin", []byte("\xff\xd8\xff\xe0JFIF0000000000"))

	mimeType, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestValidateFile_RejectsUnsupportedType(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("this is plain text, not an image"))

	_, err := ValidateFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestValidateFile_RejectsEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.png", nil)

	_, err := ValidateFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateFile_RejectsOversizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	// スパースファイルで上限+1バイトを用意する
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	_, err = ValidateFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.Contains(t, err.Error(), "10MB")
}

func TestValidateFile_RejectsMissingFile(t *testing.T) {
	_, err := ValidateFile(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFile)
}
