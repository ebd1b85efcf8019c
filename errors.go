package vipsop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cshum/vipsop/vips"
)

var (
	// ErrNotFound not found error
	ErrNotFound = NewError("not found", http.StatusNotFound)
	// ErrMethodNotAllowed method not allowed error
	ErrMethodNotAllowed = NewError("method not allowed", http.StatusMethodNotAllowed)
	// ErrUnsupportedOperation unknown operation error
	ErrUnsupportedOperation = NewError("unsupported operation", http.StatusNotFound)
	// ErrEmptyBody request without image error
	ErrEmptyBody = NewError("empty body", http.StatusBadRequest)
	// ErrTimeout timeout error
	ErrTimeout = NewError("timeout", http.StatusRequestTimeout)
	// ErrMaxSizeExceeded maximum size exceeded error
	ErrMaxSizeExceeded = NewError("maximum size exceeded", http.StatusRequestEntityTooLarge)
	// ErrUnavailable libvips not bound error
	ErrUnavailable = NewError("libvips unavailable", http.StatusServiceUnavailable)
	// ErrInternal internal error
	ErrInternal = NewError("internal error", http.StatusInternalServerError)
)

const errPrefix = "vipsop:"

var errMsgRegexp = regexp.MustCompile(fmt.Sprintf("^%s ([0-9]+) (.*)$", errPrefix))

// Error vipsop error convention
type Error struct {
	Message string `json:"message,omitempty"`
	Code    int    `json:"status,omitempty"`
}

type timeoutErr interface {
	Timeout() bool
}

// Error implements error
func (e Error) Error() string {
	return fmt.Sprintf("%s %d %s", errPrefix, e.Code, e.Message)
}

// Timeout indicates if error is timeout
func (e Error) Timeout() bool {
	return e.Code == http.StatusRequestTimeout || e.Code == http.StatusGatewayTimeout
}

// NewError creates Error from message and status code
func NewError(msg string, code int) Error {
	return Error{Message: msg, Code: code}
}

// WrapError wraps Go error into Error
func WrapError(err error) Error {
	if err == nil {
		return ErrInternal
	}
	var e Error
	if errors.As(err, &e) {
		return e
	}
	var cfgErr *vips.ConfigError
	if errors.As(err, &cfgErr) {
		return NewError(cfgErr.Error(), http.StatusBadRequest)
	}
	var callErr *vips.CallError
	if errors.As(err, &callErr) {
		return NewError(callErr.Error(), http.StatusUnprocessableEntity)
	}
	var linkErr *vips.LinkageError
	if errors.As(err, &linkErr) || errors.Is(err, vips.ErrShutdown) {
		return NewError(err.Error(), http.StatusServiceUnavailable)
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrMaxSizeExceeded
	}
	if t, ok := err.(timeoutErr); ok && t.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if msg := err.Error(); errMsgRegexp.MatchString(msg) {
		if match := errMsgRegexp.FindStringSubmatch(msg); len(match) == 3 {
			code, _ := strconv.Atoi(match[1])
			return NewError(match[2], code)
		}
	}
	msg := strings.ReplaceAll(err.Error(), "\n", "")
	return NewError(msg, http.StatusInternalServerError)
}
