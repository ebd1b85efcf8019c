package vips

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecuted operation already reached a terminal state
	ErrExecuted = errors.New("vips: operation already executed")
	// ErrImageClosed image handle released or view detached
	ErrImageClosed = errors.New("vips: image closed")
	// ErrFileRemoved output artifact already removed
	ErrFileRemoved = errors.New("vips: file removed")
	// ErrShutdown library handle shut down
	ErrShutdown = errors.New("vips: shutdown")
)

// ConfigError invalid operation configuration, raised before any native call
type ConfigError struct {
	Op     string
	Field  string
	Reason string
}

// Error implements error
func (e *ConfigError) Error() string {
	return fmt.Sprintf("vips: %s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

// CallError native entry point returned a nonzero code
type CallError struct {
	Entry   string
	Code    int
	Message string
}

// Error implements error
func (e *CallError) Error() string {
	msg := fmt.Sprintf("vips: %s returned %d", e.Entry, e.Code)
	if m := strings.TrimSpace(e.Message); m != "" {
		msg += ": " + strings.ReplaceAll(m, "\n", "; ")
	}
	return msg
}

// LinkageError libvips could not be located or bound
type LinkageError struct {
	Path string
	Err  error
}

// Error implements error
func (e *LinkageError) Error() string {
	return fmt.Sprintf("vips: cannot bind libvips from %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying load failure
func (e *LinkageError) Unwrap() error {
	return e.Err
}

func handleCallError(lib Library, entry string, code int) error {
	err := &CallError{Entry: entry, Code: code, Message: lib.LastError()}
	log("vips", LogLevelDebug, err.Error())
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
