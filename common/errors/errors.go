package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error so clients can react without parsing messages.
// Unauthenticated must stay distinct from validation and not-found: the panel
// logs the user out on the first and shows a message on the others.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindGuardViolation  Kind = "guard_violation"
	KindConflict        Kind = "conflict"
	KindUpstream        Kind = "upstream"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

// Error represents an application error
type Error struct {
	Code    int      `json:"code"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error. The kind is derived from the status code.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Kind: KindForStatus(code), Message: message, Err: err}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details ...string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// KindForStatus maps an HTTP status onto an error kind.
func KindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUpstream
	}
	return KindInternal
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
	ErrTooManyRequests    = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
)

var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrMissingCredentials = New(http.StatusUnprocessableEntity, "Email and password are required", nil)
	ErrTokenExpired       = New(http.StatusUnauthorized, "Token expired", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid token", nil)
)

var (
	ErrValidation     = New(http.StatusUnprocessableEntity, "Validation error", nil)
	ErrDuplicateLabel = New(http.StatusUnprocessableEntity, "Duplicate variant labels", nil)
	ErrGuardViolation = &Error{Code: http.StatusConflict, Kind: KindGuardViolation, Message: "Action not allowed for the current order status"}
)

// Respond writes err as JSON and aborts the request. Errors that are not
// *Error are reported as internal errors without leaking their text.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = New(http.StatusInternalServerError, ErrInternalServer.Message, err)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{
		"error":   appErr.Message,
		"kind":    appErr.Kind,
		"details": appErr.Details,
	})
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}
