package ingest

import (
	"fmt"
	"net/http"
	"os"
)

// MaxFileSize はアップロードファイルの上限サイズ（10MiB）
const MaxFileSize = 10 << 20

// allowedMimeTypes は受け付ける画像形式
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
}

// ValidateFile はアップロードファイルの事前検証を行い、検出したMIMEタイプを返す。
// IngestService.Ingest を呼ぶ前の前提条件ゲートであり、失敗は ErrInvalidFile となる。
func ValidateFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: file not found", ErrInvalidFile)
	}

	if info.Size() == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%w: file exceeds 10MB limit", ErrInvalidFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open file", ErrInvalidFile)
	}
	defer f.Close()

	// 先頭512バイトでMIMEタイプを判定する（拡張子は信用しない）
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read file", ErrInvalidFile)
	}

	mimeType := http.DetectContentType(head[:n])
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return "", fmt.Errorf("%w: unsupported file type %q (allowed: jpeg, png, gif, webp, bmp)", ErrInvalidFile, mimeType)
	}

	return mimeType, nil
}
