package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrProjectMismatch  = errors.New("callback project does not match merchant")
	ErrMissingChannel   = errors.New("channel id is required")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
