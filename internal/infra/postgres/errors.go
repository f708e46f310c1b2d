package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jinford/image-rag/internal/core/ingest"
)

// markUnavailable は接続レベルの障害を ingest.ErrStoreUnavailable として分類する。
// サーバが応答して返したSQLエラー（*pgconn.PgError）は到達不能とは扱わない。
func markUnavailable(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}

	return fmt.Errorf("%w: %v", ingest.ErrStoreUnavailable, err)
}
