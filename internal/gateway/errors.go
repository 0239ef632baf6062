package gateway

import (
	"errors"
	"fmt"
)

// Kind tags a codec failure.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindSignature
	KindCallbackData
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindSignature:
		return "signature"
	case KindCallbackData:
		return "callback data"
	default:
		return "unknown"
	}
}

// Error is the only error type produced by the codec.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("paysera %s error: %s", e.Kind, e.Message)
}

func configurationError(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func signatureError(format string, args ...any) error {
	return &Error{Kind: KindSignature, Message: fmt.Sprintf(format, args...)}
}

func callbackDataError(format string, args ...any) error {
	return &Error{Kind: KindCallbackData, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 when err did not come from the codec.
func KindOf(err error) Kind {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Kind
	}
	return 0
}

func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }
func IsSignature(err error) bool     { return KindOf(err) == KindSignature }
func IsCallbackData(err error) bool  { return KindOf(err) == KindCallbackData }
