package vips

import "time"

// Handle opaque address of a libvips object
type Handle uintptr

// libvips entry points reached through Library.Call
const (
	EntryTiffSave       = "vips_tiffsave"
	EntryDzSave         = "vips_dzsave"
	EntryJpegSave       = "vips_jpegsave"
	EntryPngSave        = "vips_pngsave"
	EntryWebpSave       = "vips_webpsave"
	EntryRot            = "vips_rot"
	EntryThumbnailImage = "vips_thumbnail_image"
	EntryNewFromFile    = "vips_image_new_from_file"
	EntryNewFromMemory  = "vips_image_new_from_memory_copy"
)

// Library the bound libvips entry points
type Library interface {
	// Call invokes a variadic operation entry point with its fixed arguments
	// and the terminated option tail, returning the native int result.
	Call(entry string, fixed []Arg, tail CallTail) int

	NewImageFromFile(filename string, tail CallTail) Handle
	NewImageFromMemory(data []byte, width, height, bands int) Handle
	ImageWidth(h Handle) int
	ImageHeight(h Handle) int
	ImageBands(h Handle) int
	Unref(h Handle)

	// LastError reads and clears the libvips error buffer
	LastError() string

	SetConcurrency(n int)
	SetCache(maxOps, maxMem, maxFiles int)
	Version() string
	Shutdown()
}

// CallObserver is notified after every native call returns
type CallObserver interface {
	ObserveCall(entry string, code int, duration time.Duration)
}

// CallObserverFunc adapts a func to CallObserver
type CallObserverFunc func(entry string, code int, duration time.Duration)

// ObserveCall implements CallObserver
func (f CallObserverFunc) ObserveCall(entry string, code int, duration time.Duration) {
	f(entry, code, duration)
}

// Observe wraps lib so that obs sees every call, load and error
func Observe(lib Library, obs CallObserver) Library {
	if obs == nil {
		return lib
	}
	return &observedLibrary{Library: lib, observer: obs}
}

type observedLibrary struct {
	Library
	observer CallObserver
}

func (l *observedLibrary) Call(entry string, fixed []Arg, tail CallTail) int {
	start := time.Now()
	code := l.Library.Call(entry, fixed, tail)
	l.observer.ObserveCall(entry, code, time.Since(start))
	return code
}

func (l *observedLibrary) NewImageFromFile(filename string, tail CallTail) Handle {
	start := time.Now()
	h := l.Library.NewImageFromFile(filename, tail)
	l.observer.ObserveCall(EntryNewFromFile, handleCode(h), time.Since(start))
	return h
}

func (l *observedLibrary) NewImageFromMemory(data []byte, width, height, bands int) Handle {
	start := time.Now()
	h := l.Library.NewImageFromMemory(data, width, height, bands)
	l.observer.ObserveCall(EntryNewFromMemory, handleCode(h), time.Since(start))
	return h
}

func handleCode(h Handle) int {
	if h == 0 {
		return -1
	}
	return 0
}
