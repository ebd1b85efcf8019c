package vips

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLibrary struct {
	Library
	concurrency int
	cache       [3]int
	shutdowns   int32
}

func (l *stubLibrary) SetConcurrency(n int) { l.concurrency = n }

func (l *stubLibrary) SetCache(maxOps, maxMem, maxFiles int) {
	l.cache = [3]int{maxOps, maxMem, maxFiles}
}

func (l *stubLibrary) Version() string { return "8.15.0" }

func (l *stubLibrary) Shutdown() { atomic.AddInt32(&l.shutdowns, 1) }

func (l *stubLibrary) Call(entry string, fixed []Arg, tail CallTail) int { return 0 }

func testBinding(open OpenFunc, env string) *binding {
	b := newBinding(open)
	b.getenv = func(string) string { return env }
	b.goos = "linux"
	return b
}

func TestBindingConcurrentFirstAccess(t *testing.T) {
	var opens int32
	b := testBinding(func(path string) (Library, error) {
		atomic.AddInt32(&opens, 1)
		time.Sleep(10 * time.Millisecond)
		return &stubLibrary{}, nil
	}, "")

	const n = 32
	libs := make([]Library, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lib, err := b.load(nil)
			assert.NoError(t, err)
			libs[i] = lib
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&opens))
	for _, lib := range libs {
		assert.Same(t, libs[0], lib)
	}
}

func TestBindingFailureCached(t *testing.T) {
	var opens int32
	b := testBinding(func(path string) (Library, error) {
		atomic.AddInt32(&opens, 1)
		return nil, errors.New("not found")
	}, "")

	_, err := b.load(nil)
	var linkErr *LinkageError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "libvips.so.42, libvips.so", linkErr.Path)
	assert.Contains(t, err.Error(), "not found")

	_, err2 := b.load(nil)
	assert.Same(t, err, err2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&opens))
}

func TestBindingSearchOrder(t *testing.T) {
	var tried []string
	lib := &stubLibrary{}
	b := testBinding(func(path string) (Library, error) {
		tried = append(tried, path)
		if path == "libvips.so" {
			return lib, nil
		}
		return nil, errors.New("missing")
	}, "")
	got, err := b.load(nil)
	require.NoError(t, err)
	assert.Same(t, lib, got)
	assert.Equal(t, []string{"libvips.so.42", "libvips.so"}, tried)
}

func TestBindingOverride(t *testing.T) {
	var tried []string
	open := func(path string) (Library, error) {
		tried = append(tried, path)
		return nil, errors.New("missing")
	}

	_, err := testBinding(open, "/env/libvips.so").load(&Config{LibraryPath: "/opt/libvips.so"})
	assert.Error(t, err)
	assert.Equal(t, []string{"/opt/libvips.so"}, tried)

	tried = nil
	_, err = testBinding(open, "/env/libvips.so").load(nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"/env/libvips.so"}, tried)
}

func TestBindingConfig(t *testing.T) {
	lib := &stubLibrary{}
	b := testBinding(func(string) (Library, error) { return lib, nil }, "")
	_, err := b.load(&Config{ConcurrencyLevel: 4, MaxCacheFiles: -1, MaxCacheMem: 1024, MaxCacheSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 4, lib.concurrency)
	assert.Equal(t, [3]int{0, 1024, defaultMaxCacheFiles}, lib.cache)

	lib2 := &stubLibrary{}
	b2 := testBinding(func(string) (Library, error) { return lib2, nil }, "")
	_, err = b2.load(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultConcurrencyLevel, lib2.concurrency)
	assert.Equal(t, [3]int{defaultMaxCacheSize, defaultMaxCacheMem, defaultMaxCacheFiles}, lib2.cache)
}

func TestBindingObserver(t *testing.T) {
	var entries []string
	b := testBinding(func(string) (Library, error) { return &stubLibrary{}, nil }, "")
	lib, err := b.load(&Config{Observer: CallObserverFunc(func(entry string, code int, _ time.Duration) {
		entries = append(entries, entry)
	})})
	require.NoError(t, err)
	lib.Call(EntryTiffSave, nil, NewVarargs().Build())
	assert.Equal(t, []string{EntryTiffSave}, entries)
}

func TestBindingShutdown(t *testing.T) {
	lib := &stubLibrary{}
	b := testBinding(func(string) (Library, error) { return lib, nil }, "")
	_, err := b.load(nil)
	require.NoError(t, err)
	b.shutdown()
	b.shutdown()
	assert.Equal(t, int32(1), lib.shutdowns)
	_, err = b.load(nil)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestBindingShutdownBeforeLoad(t *testing.T) {
	var opens int32
	b := testBinding(func(string) (Library, error) {
		atomic.AddInt32(&opens, 1)
		return &stubLibrary{}, nil
	}, "")
	b.shutdown()
	_, err := b.load(nil)
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Zero(t, atomic.LoadInt32(&opens))
}

func TestLibraryPaths(t *testing.T) {
	assert.Equal(t, []string{"libvips.42.dylib", "/opt/homebrew/lib/libvips.42.dylib", "/usr/local/lib/libvips.42.dylib"},
		libraryPaths("", "", "darwin"))
	assert.Equal(t, []string{"libvips.so.42", "libvips.so"}, libraryPaths("", "", "linux"))
	assert.Nil(t, libraryPaths("", "", "plan9"))
	assert.Equal(t, []string{"x"}, libraryPaths("x", "y", "linux"))
	assert.Equal(t, []string{"y"}, libraryPaths("", "y", "linux"))
}

func TestBindingNoPlatformDefault(t *testing.T) {
	b := testBinding(func(string) (Library, error) { return &stubLibrary{}, nil }, "")
	b.goos = "plan9"
	_, err := b.load(nil)
	var linkErr *LinkageError
	assert.ErrorAs(t, err, &linkErr)
}
