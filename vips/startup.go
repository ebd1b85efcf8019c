package vips

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// EnvLibraryPath overrides the libvips shared library location
const EnvLibraryPath = "VIPS_LIBRARY_PATH"

const (
	defaultConcurrencyLevel = 1
	defaultMaxCacheMem      = 50 * 1024 * 1024
	defaultMaxCacheSize     = 100
	defaultMaxCacheFiles    = 0
)

// Config libvips startup configuration.
// Negative numeric values select the defaults.
type Config struct {
	LibraryPath      string
	ConcurrencyLevel int
	MaxCacheFiles    int
	MaxCacheMem      int
	MaxCacheSize     int
	Observer         CallObserver
}

// OpenFunc opens and initialises libvips at path
type OpenFunc func(path string) (Library, error)

type binding struct {
	open   OpenFunc
	getenv func(string) string
	goos   string

	once       sync.Once
	lock       sync.Mutex
	lib        Library
	err        error
	isShutdown bool
}

func newBinding(open OpenFunc) *binding {
	return &binding{open: open, getenv: os.Getenv, goos: runtime.GOOS}
}

var defaultBinding = newBinding(openLibrary)

// Startup binds libvips for the process. Pass in nil for default configuration.
// Only the first call configures; a failed bind is cached and returned on every later use.
func Startup(config *Config) error {
	_, err := defaultBinding.load(config)
	return err
}

// Bind is Startup returning the bound Library
func Bind(config *Config) (Library, error) {
	return defaultBinding.load(config)
}

func startupIfNeeded() (Library, error) {
	return defaultBinding.load(nil)
}

// Shutdown libvips. The process cannot bind again afterwards.
func Shutdown() {
	defaultBinding.shutdown()
}

func (b *binding) load(config *Config) (Library, error) {
	b.once.Do(func() {
		b.lib, b.err = b.bind(config)
	})
	if b.err != nil {
		return nil, b.err
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.isShutdown {
		return nil, ErrShutdown
	}
	return b.lib, nil
}

func (b *binding) shutdown() {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.isShutdown {
		return
	}
	b.isShutdown = true
	// claim the once so a later load cannot bind
	b.once.Do(func() {})
	if b.lib != nil {
		b.lib.Shutdown()
	}
}

func (b *binding) bind(config *Config) (Library, error) {
	if config == nil {
		config = &Config{
			ConcurrencyLevel: -1,
			MaxCacheFiles:    -1,
			MaxCacheMem:      -1,
			MaxCacheSize:     -1,
		}
	}
	paths := libraryPaths(config.LibraryPath, b.getenv(EnvLibraryPath), b.goos)
	if len(paths) == 0 {
		return nil, &LinkageError{Path: b.goos, Err: errors.New("no default library name for platform")}
	}
	var errs []error
	for _, path := range paths {
		lib, err := b.open(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lib.SetConcurrency(orDefault(config.ConcurrencyLevel, defaultConcurrencyLevel))
		lib.SetCache(
			orDefault(config.MaxCacheSize, defaultMaxCacheSize),
			orDefault(config.MaxCacheMem, defaultMaxCacheMem),
			orDefault(config.MaxCacheFiles, defaultMaxCacheFiles))
		log("vips", LogLevelInfo, fmt.Sprintf("vips %s bound from %s", lib.Version(), path))
		return Observe(lib, config.Observer), nil
	}
	err := &LinkageError{Path: strings.Join(paths, ", "), Err: errors.Join(errs...)}
	log("vips", LogLevelError, err.Error())
	return nil, err
}

// libraryPaths lists the candidates in search order. An explicit or env override is tried alone.
func libraryPaths(explicit, env, goos string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if env != "" {
		return []string{env}
	}
	switch goos {
	case "darwin":
		return []string{
			"libvips.42.dylib",
			"/opt/homebrew/lib/libvips.42.dylib",
			"/usr/local/lib/libvips.42.dylib",
		}
	case "linux":
		return []string{"libvips.so.42", "libvips.so"}
	}
	return nil
}

func orDefault(v, def int) int {
	if v >= 0 {
		return v
	}
	return def
}
