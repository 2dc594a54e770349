package products

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies domain errors. The set is closed.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
)

var kindStatus = map[Kind]int{
	KindNotFound:       http.StatusNotFound,
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindConflict:       http.StatusConflict,
}

var kindNames = map[Kind]string{
	KindNotFound:       "NotFound",
	KindValidation:     "Validation",
	KindAuthentication: "Authentication",
	KindAuthorization:  "Authorization",
	KindConflict:       "Conflict",
}

// Status returns the HTTP status for k. Unknown kinds map to 500.
func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is a domain failure. It is created where the failure is detected and
// turned into an HTTP response only by the pipeline's error translator.
type Error struct {
	Kind      Kind
	Message   string
	Timestamp time.Time
	Detail    any
}

func (e *Error) Error() string {
	return e.Message
}

// Status is the HTTP status the error is reported with.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Is reports whether target is a domain error of the same kind, so
// errors.Is(err, ErrNotFound) matches any NotFound error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, message string, detail any) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	}
}

const (
	defaultNotFoundMessage       = "Resource not found"
	defaultValidationMessage     = "Validation failed"
	defaultAuthenticationMessage = "Authentication failed"
	defaultAuthorizationMessage  = "Access denied"
	defaultConflictMessage       = "Resource conflict"
)

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound       = &Error{Kind: KindNotFound, Message: defaultNotFoundMessage}
	ErrValidation     = &Error{Kind: KindValidation, Message: defaultValidationMessage}
	ErrAuthentication = &Error{Kind: KindAuthentication, Message: defaultAuthenticationMessage}
	ErrAuthorization  = &Error{Kind: KindAuthorization, Message: defaultAuthorizationMessage}
	ErrConflict       = &Error{Kind: KindConflict, Message: defaultConflictMessage}
)

func NotFound(message string) *Error {
	if message == "" {
		message = defaultNotFoundMessage
	}
	return newError(KindNotFound, message, nil)
}

func Validation(message string, detail any) *Error {
	if message == "" {
		message = defaultValidationMessage
	}
	return newError(KindValidation, message, detail)
}

func Authentication(message string) *Error {
	if message == "" {
		message = defaultAuthenticationMessage
	}
	return newError(KindAuthentication, message, nil)
}

func Authorization(message string) *Error {
	if message == "" {
		message = defaultAuthorizationMessage
	}
	return newError(KindAuthorization, message, nil)
}

func Conflict(message string) *Error {
	if message == "" {
		message = defaultConflictMessage
	}
	return newError(KindConflict, message, nil)
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
