package contract

import "errors"

var (
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrQuotaExceeded = errors.New("model quota exceeded")
	ErrStorage       = errors.New("storage unavailable")
	ErrValidation    = errors.New("validation failed")
)
