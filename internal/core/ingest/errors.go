package ingest

import "errors"

var (
	// ErrInvalidFile はアップロードファイルが検証に失敗した場合のエラー
	ErrInvalidFile = errors.New("invalid file")

	// ErrStoreUnavailable はベクトルストアに到達できない場合のエラー。
	// バッチ内の個別失敗とは異なり、リクエスト全体を中断させる。
	ErrStoreUnavailable = errors.New("vector store unavailable")
)
