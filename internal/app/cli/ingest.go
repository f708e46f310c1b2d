package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/jinford/image-rag/internal/core/ingest"
)

// IngestAction はローカルの画像ファイル群を取り込むコマンドのアクション
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("画像ファイルのパスを1つ以上指定してください")
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// 取り込みは一時ファイルを消費するため、元ファイルを残すようコピーしてから渡す
	files, err := stageLocalFiles(appCtx.Config.Upload.TempDir, paths)
	if err != nil {
		return err
	}

	result, err := appCtx.Container.IngestService.Ingest(ctx, files)
	if result != nil {
		for _, record := range result.Succeeded {
			fmt.Printf("OK   %s  id=%s\n", record.Filename, record.ID)
			fmt.Printf("     %s\n", record.Description)
		}
		for _, failure := range result.Failed {
			fmt.Printf("NG   %s  %s\n", failure.Filename, failure.Error)
		}
		fmt.Printf("合計: %d件（成功 %d / 失敗 %d）\n", result.Total(), len(result.Succeeded), len(result.Failed))
	}
	if err != nil {
		return err
	}

	return nil
}

// stageLocalFiles はローカルファイル群を検証し、一時領域へコピーする。
// いずれかのファイルで失敗した場合はコピー済みの一時ファイルをすべて削除する。
func stageLocalFiles(tempDir string, paths []string) ([]ingest.UploadedFile, error) {
	staged := make([]ingest.UploadedFile, 0, len(paths))
	cleanup := func() {
		for _, f := range staged {
			_ = os.Remove(f.Path)
		}
	}

	for _, path := range paths {
		file, err := stageLocalFile(tempDir, path)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, file)
	}

	return staged, nil
}

// stageLocalFile はローカルファイルを検証し、一時領域へコピーする
func stageLocalFile(tempDir, path string) (ingest.UploadedFile, error) {
	mimeType, err := ingest.ValidateFile(path)
	if err != nil {
		return ingest.UploadedFile{}, fmt.Errorf("%s: %w", path, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return ingest.UploadedFile{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(tempDir, "ingest-*")
	if err != nil {
		return ingest.UploadedFile{}, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return ingest.UploadedFile{}, fmt.Errorf("failed to copy %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return ingest.UploadedFile{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	return ingest.UploadedFile{
		Path:     dst.Name(),
		Filename: filepath.Base(path),
		MimeType: mimeType,
	}, nil
}
