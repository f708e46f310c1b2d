package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema はimagesテーブルと関連インデックスを作成する。
// プロセス起動時に一度だけ呼び出され、リクエスト処理経路には
// 遅延初期化の分岐を持たせない。
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS images (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			filename text NOT NULL,
			description text NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS images_embedding_idx ON images USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS images_created_at_idx ON images (created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", markUnavailable(err))
		}
	}

	return nil
}
