package errprocess

import (
	"errors"
	"fmt"

	"viewtube/pkg/logger"
)

// Kind 錯誤分類，對應 API 回應的狀態碼
type Kind int

const (
	// KindValidation malformed or missing input
	KindValidation Kind = iota
	// KindNotFound referenced entity absent
	KindNotFound
	// KindAuth missing, invalid or expired credential
	KindAuth
	// KindConflict duplicate record (subscription, saved video...)
	KindConflict
	// KindAuthorization caller is not the resource owner
	KindAuthorization
	// KindDependency store/cache/blob call failed or timed out
	KindDependency
)

// Error carries a stable client-facing message plus the internal cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap expose the internal cause for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation create a KindValidation error
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound create a KindNotFound error
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Auth create a KindAuth error
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Conflict create a KindConflict error
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Authorization create a KindAuthorization error
func Authorization(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Dependency wrap an infrastructure failure; the cause is logged here and
// never surfaces to the client outside development mode
func Dependency(msg string, cause error) error {
	logger.Log.Error(fmt.Sprintf("%s : %v", msg, cause))
	return &Error{Kind: KindDependency, Message: msg, Err: cause}
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// KindOf classify any error; unclassified errors count as dependency failures
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

// MessageOf the stable client-facing message for any error
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// StatusCode map the taxonomy onto HTTP status codes
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	case KindAuth:
		return 401
	case KindConflict:
		return 409
	case KindAuthorization:
		return 403
	default:
		return 500
	}
}
