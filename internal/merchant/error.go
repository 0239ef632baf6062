package merchant

import "errors"

var (
	ErrNotConfigured = errors.New("merchant not configured")
	ErrInvalidConfig = errors.New("invalid merchant config")
)
