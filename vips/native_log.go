//go:build cgo && (linux || darwin)

package vips

import "C"

//export voGoLog
func voGoLog(domain *C.char, flags C.int, message *C.char) {
	handleGLog(C.GoString(domain), int(flags), C.GoString(message))
}
