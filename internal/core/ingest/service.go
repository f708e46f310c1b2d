package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Describer は画像の説明文生成インターフェース
type Describer interface {
	// Describe は画像データから説明文を生成する
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Repository は画像レコードのデータアクセスを統合するインターフェース
type Repository interface {
	// Insert は画像レコードを保存し、IDが採番されたレコードを返す
	Insert(ctx context.Context, filename, description string, embedding []float32) (*ImageRecord, error)

	// GetByID はIDで画像レコードを取得する（Embeddingは含まない）
	GetByID(ctx context.Context, id uuid.UUID) (mo.Option[*ImageRecord], error)

	// ListRecent は取り込み日時の降順で画像レコードを取得する
	ListRecent(ctx context.Context, limit int) ([]*ImageRecord, error)
}

// IngestService は画像取り込みのユースケースを提供する
type IngestService struct {
	repo      Repository
	describer Describer
	embedder  Embedder
	logger    *slog.Logger
}

type ingestServiceOptions struct {
	logger *slog.Logger
}

// IngestServiceOption は IngestService のオプション設定
type IngestServiceOption func(*ingestServiceOptions)

// WithIngestLogger は IngestService にロガーを設定する
func WithIngestLogger(logger *slog.Logger) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.logger = logger
	}
}

// NewIngestService は新しいIngestServiceを作成する
func NewIngestService(repo Repository, describer Describer, embedder Embedder, opts ...IngestServiceOption) *IngestService {
	options := ingestServiceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &IngestService{
		repo:      repo,
		describer: describer,
		embedder:  embedder,
		logger:    options.logger,
	}
}

// Ingest はアップロードされたファイル群を入力順に1件ずつ取り込む。
// 外部APIのレート制限に収めるため、並行処理は行わない。
// 個別の失敗はFailedに蓄積して処理を継続し、ストア到達不能の場合のみ
// 中断する。その場合もそれまでの部分結果をエラーと併せて返す。
func (s *IngestService) Ingest(ctx context.Context, files []UploadedFile) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("files are required")
	}

	result := &BatchResult{
		Succeeded: make([]*ImageRecord, 0, len(files)),
		Failed:    make([]ItemFailure, 0),
	}

	for i, file := range files {
		record, err := s.ingestOne(ctx, file)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				// 未着手分の一時ファイルも、この呼び出しが返る前に解放する
				for _, remaining := range files[i+1:] {
					s.removeTempFile(remaining.Path)
				}
				return result, fmt.Errorf("ingestion aborted: %w", err)
			}

			s.logger.Warn("画像の取り込みに失敗",
				"filename", file.Filename,
				"error", err,
			)
			result.Failed = append(result.Failed, ItemFailure{
				Filename: file.Filename,
				Error:    err.Error(),
			})
			continue
		}

		result.Succeeded = append(result.Succeeded, record)
	}

	s.logger.Info("バッチ取り込みが完了",
		"total", len(files),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)

	return result, nil
}

// IngestOne は単一ファイルを取り込む。バッチと同一の処理を通り、
// 結果はバッチの封筒なしで返す。
func (s *IngestService) IngestOne(ctx context.Context, file UploadedFile) (*ImageRecord, error) {
	return s.ingestOne(ctx, file)
}

// ingestOne は 説明文生成 → Embedding生成 → 保存 を1件分実行する。
// 一時ファイルは成否にかかわらず必ず削除する。
func (s *IngestService) ingestOne(ctx context.Context, file UploadedFile) (*ImageRecord, error) {
	defer s.removeTempFile(file.Path)

	image, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	description, err := s.describer.Describe(ctx, image, file.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to describe image: %w", err)
	}

	embedding, err := s.embedder.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("failed to embed description: %w", err)
	}

	record, err := s.repo.Insert(ctx, file.Filename, description, embedding)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store image record: %w", err)
	}

	return record, nil
}

// removeTempFile は一時ファイルを削除する。削除の失敗はログに残すのみで、
// 取り込み結果には影響させない。
func (s *IngestService) removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("一時ファイルの削除に失敗",
			"path", path,
			"error", err,
		)
	}
}
