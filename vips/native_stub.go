//go:build !cgo || !(linux || darwin)

package vips

import (
	"errors"
	"runtime"
)

// ErrNotBuilt native binding unavailable in this build
var ErrNotBuilt = errors.New("vips: native binding requires cgo on linux or darwin, running " + runtime.GOOS)

func openLibrary(path string) (Library, error) {
	return nil, ErrNotBuilt
}
