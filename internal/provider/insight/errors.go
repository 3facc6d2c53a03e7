package insight

import "errors"

var (
	ErrInsightUnavailable = errors.New("insight service unavailable")
	ErrInvalidResponse    = errors.New("invalid response from insight service")
	ErrDecodeFailed       = errors.New("insight service rejected the image")
)
