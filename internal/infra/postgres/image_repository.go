package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/samber/mo"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/jinford/image-rag/internal/core/search"
)

// ImageRepository は ingest.Repository と search.Repository を実装する
// PostgreSQL(pgvector) リポジトリ。
type ImageRepository struct {
	pool *pgxpool.Pool
}

// NewImageRepository は新しい ImageRepository を返す。
func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

var (
	_ ingest.Repository = (*ImageRepository)(nil)
	_ search.Repository = (*ImageRepository)(nil)
)

// Insert は画像レコードを保存し、IDが採番されたレコードを返す。
func (r *ImageRepository) Insert(ctx context.Context, filename, description string, embedding []float32) (*ingest.ImageRecord, error) {
	const query = `
		INSERT INTO images (filename, description, embedding)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, query, filename, description, pgvector.NewVector(embedding)).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", markUnavailable(err))
	}

	return &ingest.ImageRecord{
		ID:          PgtypeToUUID(id),
		Filename:    filename,
		Description: description,
		Embedding:   embedding,
		CreatedAt:   PgtypeToTime(createdAt),
	}, nil
}

// GetByID はIDで画像レコードを取得する。存在しない場合は None を返す。
func (r *ImageRepository) GetByID(ctx context.Context, id uuid.UUID) (mo.Option[*ingest.ImageRecord], error) {
	const query = `
		SELECT id, filename, description, created_at
		FROM images
		WHERE id = $1`

	record, err := scanImageRecord(r.pool.QueryRow(ctx, query, UUIDToPgtype(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[*ingest.ImageRecord](), nil
		}
		return mo.None[*ingest.ImageRecord](), fmt.Errorf("failed to get image: %w", markUnavailable(err))
	}

	return mo.Some(record), nil
}

// ListRecent は取り込み日時の降順で画像レコードを取得する。
func (r *ImageRepository) ListRecent(ctx context.Context, limit int) ([]*ingest.ImageRecord, error) {
	const query = `
		SELECT id, filename, description, created_at
		FROM images
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", markUnavailable(err))
	}
	defer rows.Close()

	records := make([]*ingest.ImageRecord, 0, limit)
	for rows.Next() {
		record, err := scanImageRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image rows: %w", markUnavailable(err))
	}

	return records, nil
}

// Query はコサイン類似度が threshold 以上のレコードを類似度降順で最大 limit 件返す。
// スコアは 1 - (embedding <=> query) で [0,1] に正規化される。
func (r *ImageRepository) Query(ctx context.Context, queryVector []float32, limit int, threshold float64) ([]*search.SearchResult, error) {
	const query = `
		SELECT id, filename, description, created_at, 1 - (embedding <=> $1) AS score
		FROM images
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(queryVector), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", markUnavailable(err))
	}
	defer rows.Close()

	results := make([]*search.SearchResult, 0, limit)
	for rows.Next() {
		var (
			id        pgtype.UUID
			filename  string
			desc      string
			createdAt pgtype.Timestamptz
			score     float64
		)
		if err := rows.Scan(&id, &filename, &desc, &createdAt, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		results = append(results, &search.SearchResult{
			ID:          PgtypeToUUID(id),
			Filename:    filename,
			Description: desc,
			CreatedAt:   PgtypeToTime(createdAt),
			Score:       score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows: %w", markUnavailable(err))
	}

	return results, nil
}

// Stats はコレクション統計を返す。次元数はカタログの列定義から取得する。
func (r *ImageRepository) Stats(ctx context.Context) (*search.CollectionStats, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM images`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count images: %w", markUnavailable(err))
	}

	// vector型の atttypmod は次元数そのもの
	var dimension int
	err := r.pool.QueryRow(ctx, `
		SELECT atttypmod
		FROM pg_attribute
		WHERE attrelid = 'images'::regclass AND attname = 'embedding'`).Scan(&dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding dimension: %w", markUnavailable(err))
	}

	return &search.CollectionStats{
		Count:          count,
		Dimension:      dimension,
		DistanceMetric: "cosine",
		Status:         "ok",
	}, nil
}

// rowScanner は pgx.Row と pgx.Rows の共通部分
type rowScanner interface {
	Scan(dest ...any) error
}

func scanImageRecord(row rowScanner) (*ingest.ImageRecord, error) {
	var (
		id        pgtype.UUID
		filename  string
		desc      string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &filename, &desc, &createdAt); err != nil {
		return nil, err
	}
	return &ingest.ImageRecord{
		ID:          PgtypeToUUID(id),
		Filename:    filename,
		Description: desc,
		CreatedAt:   PgtypeToTime(createdAt),
	}, nil
}
