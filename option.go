package vipsop

import (
	"time"

	"github.com/cshum/vipsop/vips"
	"go.uber.org/zap"
)

// Option App option
type Option func(app *App)

// WithLogger with zap logger
func WithLogger(logger *zap.Logger) Option {
	return func(app *App) {
		if logger != nil {
			app.Logger = logger
		}
	}
}

// WithDebug with debug logging
func WithDebug(debug bool) Option {
	return func(app *App) {
		app.Debug = debug
	}
}

// WithLibrary with a bound libvips, bypassing the process-wide binding
func WithLibrary(lib vips.Library) Option {
	return func(app *App) {
		app.lib = lib
	}
}

// WithLibraryPath with explicit libvips shared library location
func WithLibraryPath(path string) Option {
	return func(app *App) {
		app.LibraryPath = path
	}
}

// WithConcurrency with libvips worker threads per operation
func WithConcurrency(concurrency int) Option {
	return func(app *App) {
		app.Concurrency = concurrency
	}
}

// WithMaxCacheFiles with libvips operation cache max open files
func WithMaxCacheFiles(num int) Option {
	return func(app *App) {
		app.MaxCacheFiles = num
	}
}

// WithMaxCacheMem with libvips operation cache max memory
func WithMaxCacheMem(num int) Option {
	return func(app *App) {
		app.MaxCacheMem = num
	}
}

// WithMaxCacheSize with libvips operation cache max operations
func WithMaxCacheSize(num int) Option {
	return func(app *App) {
		app.MaxCacheSize = num
	}
}

// WithCallObserver with observer of every native call
func WithCallObserver(observer vips.CallObserver) Option {
	return func(app *App) {
		app.Observer = observer
	}
}

// WithProcessConcurrency with maximum number of conversions running in parallel
func WithProcessConcurrency(concurrency int64) Option {
	return func(app *App) {
		if concurrency > 0 {
			app.ProcessConcurrency = concurrency
		}
	}
}

// WithRequestTimeout with request timeout
func WithRequestTimeout(timeout time.Duration) Option {
	return func(app *App) {
		if timeout > 0 {
			app.RequestTimeout = timeout
		}
	}
}

// WithSaveTimeout with storage save timeout
func WithSaveTimeout(timeout time.Duration) Option {
	return func(app *App) {
		if timeout > 0 {
			app.SaveTimeout = timeout
		}
	}
}

// WithMaxUploadSize with maximum request body size in bytes
func WithMaxUploadSize(size int64) Option {
	return func(app *App) {
		if size > 0 {
			app.MaxUploadSize = size
		}
	}
}

// WithTempDir with directory for input spool files and output artifacts
func WithTempDir(dir string) Option {
	return func(app *App) {
		app.TempDir = dir
	}
}

// WithStorages with result storages
func WithStorages(storages ...Storage) Option {
	return func(app *App) {
		app.Storages = append(app.Storages, storages...)
	}
}

// WithDisableErrorBody with disable JSON error body
func WithDisableErrorBody(disabled bool) Option {
	return func(app *App) {
		app.DisableErrorBody = disabled
	}
}
