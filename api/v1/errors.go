package v1

import "errors"

var (
	ErrSubmitCtx   = errors.New("submit request missing in context")
	ErrURLRequired = errors.New("url is required")
	ErrInvalidURL  = errors.New("invalid YouTube URL")
	ErrContentType = errors.New("Content-Type must be application/json")
	ErrBadFilename = errors.New("invalid filename")
)
