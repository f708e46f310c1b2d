package llm

import "errors"

var (
	// ErrUnauthorized はAPIキーが不正または未設定の場合のエラー
	ErrUnauthorized = errors.New("provider rejected credentials")

	// ErrRateLimitExceeded はレート制限を超えた場合のエラー
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidRequest はリクエストが不正な場合のエラー
	ErrInvalidRequest = errors.New("invalid request")

	// ErrModelNotAvailable はモデルが利用できない場合のエラー
	ErrModelNotAvailable = errors.New("model not available")
)
