package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/jinford/image-rag/internal/core/search"
)

const (
	// maxUploadFiles は1リクエストで受け付ける最大ファイル数
	maxUploadFiles = 10

	// maxMultipartMemory はmultipart解析時のメモリ上限（超過分はディスクへ）
	maxMultipartMemory = 32 << 20

	// defaultListLimit と maxListLimit は一覧取得の件数制御
	defaultListLimit = 20
	maxListLimit     = 100
)

// Ingestor は画像取り込みのユースケース
type Ingestor interface {
	Ingest(ctx context.Context, files []ingest.UploadedFile) (*ingest.BatchResult, error)
	IngestOne(ctx context.Context, file ingest.UploadedFile) (*ingest.ImageRecord, error)
}

// Searcher は検索のユースケース
type Searcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResponse, error)
	Stats(ctx context.Context) (*search.CollectionStats, error)
}

// Handler はREST APIのリクエストハンドラ
type Handler struct {
	ingestor Ingestor
	searcher Searcher
	images   ingest.Repository
	tempDir  string
	logger   *slog.Logger
}

type handlerOptions struct {
	tempDir string
	logger  *slog.Logger
}

// HandlerOption は Handler のオプション設定
type HandlerOption func(*handlerOptions)

// WithTempDir は一時ファイルの保存先を設定する
func WithTempDir(dir string) HandlerOption {
	return func(o *handlerOptions) {
		o.tempDir = dir
	}
}

// WithHandlerLogger は Handler にロガーを設定する
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.logger = logger
	}
}

// NewHandler は新しい Handler を作成する
func NewHandler(ingestor Ingestor, searcher Searcher, images ingest.Repository, opts ...HandlerOption) *Handler {
	options := handlerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Handler{
		ingestor: ingestor,
		searcher: searcher,
		images:   images,
		tempDir:  options.tempDir,
		logger:   options.logger,
	}
}

// singleUploadResponse は単一アップロードの応答
type singleUploadResponse struct {
	Image *ingest.ImageRecord `json:"image"`
}

// batchUploadResponse はバッチアップロードの応答。
// 部分失敗でも200で返し、内訳で成否を区別する。
type batchUploadResponse struct {
	Total     int                   `json:"total"`
	Succeeded []*ingest.ImageRecord `json:"succeeded"`
	Failed    []ingest.ItemFailure  `json:"failed"`
}

// partialFailureResponse はパイプライン障害時の応答。
// 中断までに完了した部分結果を破棄せず返す。
type partialFailureResponse struct {
	Error     string                `json:"error"`
	Succeeded []*ingest.ImageRecord `json:"succeeded"`
	Failed    []ingest.ItemFailure  `json:"failed"`
}

// Upload は POST /api/upload を処理する。
// フィールド image で1枚、images で最大10枚を受け付ける。
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["images"]
	single := false
	if len(headers) == 0 {
		headers = r.MultipartForm.File["image"]
		single = len(headers) == 1
	}

	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `image file is required (field "image" or "images")`)
		return
	}
	if len(headers) > maxUploadFiles {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("too many files: at most %d per request", maxUploadFiles))
		return
	}

	files, err := h.stageFiles(headers)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	if single {
		record, err := h.ingestor.IngestOne(r.Context(), files[0])
		if err != nil {
			writeError(w, statusFromError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, singleUploadResponse{Image: record})
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), files)
	if err != nil {
		// ストア到達不能などの中断。部分結果があれば併せて返す。
		resp := partialFailureResponse{Error: err.Error()}
		if result != nil {
			resp.Succeeded = result.Succeeded
			resp.Failed = result.Failed
		}
		writeJSON(w, statusFromError(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, batchUploadResponse{
		Total:     result.Total(),
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// stageFiles はアップロードされたファイルを一時領域に保存し、検証する。
// いずれかのファイルが検証に失敗した場合は保存済みの一時ファイルをすべて削除する。
func (h *Handler) stageFiles(headers []*multipart.FileHeader) ([]ingest.UploadedFile, error) {
	staged := make([]ingest.UploadedFile, 0, len(headers))
	cleanup := func() {
		for _, f := range staged {
			_ = os.Remove(f.Path)
		}
	}

	for _, header := range headers {
		// 保存前にヘッダ申告サイズで弾けるものは弾く
		if header.Size > ingest.MaxFileSize {
			cleanup()
			return nil, fmt.Errorf("%w: %s exceeds 10MB limit", ingest.ErrInvalidFile, header.Filename)
		}

		path, err := h.saveTempFile(header)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to save uploaded file: %w", err)
		}

		mimeType, err := ingest.ValidateFile(path)
		if err != nil {
			_ = os.Remove(path)
			cleanup()
			return nil, fmt.Errorf("%s: %w", header.Filename, err)
		}

		staged = append(staged, ingest.UploadedFile{
			Path: path,
			// パス構成に使わせないためベース名のみ保持する
			Filename: filepath.Base(header.Filename),
			MimeType: mimeType,
		})
	}

	return staged, nil
}

func (h *Handler) saveTempFile(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.tempDir, "upload-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}

	return dst.Name(), nil
}

// queryRequest は POST /api/query のリクエストボディ
type queryRequest struct {
	Query          string   `json:"query"`
	Limit          int      `json:"limit"`
	ScoreThreshold *float64 `json:"scoreThreshold"`
}

// Query は POST /api/query を処理する
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.searcher.Search(r.Context(), search.SearchParams{
		Query:          req.Query,
		Limit:          req.Limit,
		ScoreThreshold: req.ScoreThreshold,
	})
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// listImagesResponse は GET /api/images の応答
type listImagesResponse struct {
	Images []*ingest.ImageRecord `json:"images"`
}

// ListImages は GET /api/images を処理する
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := h.images.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listImagesResponse{Images: records})
}

// GetImage は GET /api/images/{id} を処理する
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	recordOpt, err := h.images.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	record, ok := recordOpt.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	writeJSON(w, http.StatusOK, singleUploadResponse{Image: record})
}

// Stats は GET /api/stats を処理する
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.searcher.Stats(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Health は GET /health を処理する
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
