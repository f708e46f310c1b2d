package ingest

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile は一時保存済みのアップロードファイルを表す。
// Path の実体はサービスが所有し、取り込み完了時に必ず削除される。
type UploadedFile struct {
	Path     string
	Filename string
	MimeType string
}

// ImageRecord は取り込み済み画像1件を表す
type ImageRecord struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemFailure はバッチ内の1件の失敗を表す
type ItemFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult はバッチ取り込みの結果を表す。
// 入力の各ファイルは Succeeded か Failed のどちらか一方にのみ現れる。
type BatchResult struct {
	Succeeded []*ImageRecord `json:"succeeded"`
	Failed    []ItemFailure  `json:"failed"`
}

// Total は処理を試みたファイル数を返す
func (r *BatchResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}
