package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/jinford/image-rag/internal/core/search"
	"github.com/jinford/image-rag/internal/infra/openai"
	"github.com/jinford/image-rag/internal/infra/postgres"
	"github.com/jinford/image-rag/internal/platform/config"
	"github.com/jinford/image-rag/internal/platform/database"
)

// ServiceContainer はアプリケーションの依存関係を保持する
type ServiceContainer struct {
	IngestService *ingest.IngestService
	SearchService *search.SearchService
	ImageRepo     ingest.Repository

	logger   *slog.Logger
	database *database.Database
}

type containerOptions struct {
	logger    *slog.Logger
	describer ingest.Describer
	embedder  embedderPort
	repo      imageRepoPort
}

// embedderPort は ingest と search の双方の Embedder を満たす
type embedderPort interface {
	ingest.Embedder
	search.Embedder
}

// imageRepoPort は ingest と search の双方の Repository を満たす
type imageRepoPort interface {
	ingest.Repository
	search.Repository
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerDescriber はカスタム Describer を注入する
func WithContainerDescriber(describer ingest.Describer) ContainerOption {
	return func(opts *containerOptions) {
		opts.describer = describer
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder interface {
	ingest.Embedder
	search.Embedder
}) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerRepository はカスタムリポジトリを注入する
func WithContainerRepository(repo interface {
	ingest.Repository
	search.Repository
}) ContainerOption {
	return func(opts *containerOptions) {
		opts.repo = repo
	}
}

// NewContainer は設定からコンテナを生成する。
// スキーマの初期化はここで一度だけ行い、リクエスト処理経路には持ち込まない。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	if err := postgres.EnsureSchema(ctx, db.Pool, cfg.OpenAI.EmbeddingDimension); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗しました: %w", err)
	}

	// Describer (OpenAI Vision)
	describer := options.describer
	if describer == nil {
		describer = openai.NewDescriber(
			cfg.OpenAI.APIKey,
			openai.WithVisionModel(cfg.OpenAI.VisionModel),
		)
	}

	// Embedder (OpenAI)
	var embedder embedderPort = options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
	}

	// Repository (PostgreSQL + pgvector)
	var repo imageRepoPort = options.repo
	if repo == nil {
		repo = postgres.NewImageRepository(db.Pool)
	}

	ingestService := ingest.NewIngestService(
		repo,
		describer,
		embedder,
		ingest.WithIngestLogger(options.logger),
	)

	searchService := search.NewSearchService(
		repo,
		embedder,
		search.WithSearchLogger(options.logger),
	)

	return &ServiceContainer{
		IngestService: ingestService,
		SearchService: searchService,
		ImageRepo:     repo,
		logger:        options.logger,
		database:      db,
	}, nil
}

// Close は内部リソースを解放する。
func (c *ServiceContainer) Close() {
	if c != nil && c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す。
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
