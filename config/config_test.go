package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/metrics/instrumentation"
	"github.com/cshum/vipsop/metrics/prometheusmetrics"
	"github.com/cshum/vipsop/storage/filestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefault(t *testing.T) {
	srv := CreateServer(nil)
	assert.Equal(t, ":8000", srv.Addr)
	assert.Nil(t, srv.Metrics)
	assert.Empty(t, srv.SentryDsn)
	assert.Equal(t, time.Second*10, srv.StartupTimeout)
	assert.Equal(t, time.Second*10, srv.ShutdownTimeout)
	app := srv.App.(*vipsop.App)

	assert.False(t, app.Debug)
	assert.Equal(t, time.Second*30, app.RequestTimeout)
	assert.Equal(t, time.Second*20, app.SaveTimeout)
	assert.Empty(t, app.ProcessConcurrency)
	assert.Equal(t, int64(32<<20), app.MaxUploadSize)
	assert.Empty(t, app.TempDir)
	assert.False(t, app.DisableErrorBody)
	assert.Empty(t, app.LibraryPath)
	assert.Equal(t, -1, app.Concurrency)
	assert.Equal(t, -1, app.MaxCacheFiles)
	assert.Equal(t, -1, app.MaxCacheMem)
	assert.Equal(t, -1, app.MaxCacheSize)
	assert.Nil(t, app.Observer)
	assert.Empty(t, app.Storages)
}

func TestBasic(t *testing.T) {
	srv := CreateServer([]string{
		"-debug",
		"-port", "2345",
		"-vipsop-request-timeout", "16s",
		"-vipsop-save-timeout", "7s",
		"-vipsop-process-concurrency", "199",
		"-vipsop-max-upload-size", "1024",
		"-vipsop-temp-dir", "/tmp/vipsop",
		"-vipsop-disable-error-body",
		"-server-address", "localhost",
		"-server-path-prefix", "/vips",
		"-server-cert-file", "cert.pem",
		"-server-key-file", "key.pem",
		"-server-read-timeout", "3s",
		"-server-startup-timeout", "4s",
		"-server-shutdown-timeout", "5s",
	})
	app := srv.App.(*vipsop.App)

	assert.Equal(t, 2345, srv.Port)
	assert.Equal(t, "localhost:2345", srv.Addr)
	assert.Equal(t, "/vips", srv.PathPrefix)
	assert.Equal(t, "cert.pem", srv.CertFile)
	assert.Equal(t, "key.pem", srv.KeyFile)
	assert.Equal(t, time.Second*3, srv.ReadTimeout)
	assert.Equal(t, time.Second*4, srv.StartupTimeout)
	assert.Equal(t, time.Second*5, srv.ShutdownTimeout)
	assert.True(t, srv.Debug)

	assert.True(t, app.Debug)
	assert.True(t, app.DisableErrorBody)
	assert.Equal(t, time.Second*16, app.RequestTimeout)
	assert.Equal(t, time.Second*7, app.SaveTimeout)
	assert.Equal(t, int64(199), app.ProcessConcurrency)
	assert.Equal(t, int64(1024), app.MaxUploadSize)
	assert.Equal(t, "/tmp/vipsop", app.TempDir)
}

func TestVersion(t *testing.T) {
	assert.Nil(t, CreateServer([]string{"-version"}))
}

func TestBind(t *testing.T) {
	srv := CreateServer([]string{
		"-debug",
		"-port", "2345",
		"-bind", ":4567",
	})
	assert.Equal(t, ":4567", srv.Addr)
}

func TestSentry(t *testing.T) {
	srv := CreateServer([]string{
		"-sentry-dsn", "https://12345@sentry.com/123",
	})
	assert.Equal(t, "https://12345@sentry.com/123", srv.SentryDsn)
	assert.NotNil(t, srv.Logger)
}

func TestPrometheusBind(t *testing.T) {
	srv := CreateServer([]string{
		"-bind", ":2345",
		"-prometheus-bind", ":6789",
		"-prometheus-path", "/myprom",
	})
	assert.Equal(t, ":2345", srv.Addr)
	pm := srv.Metrics.(*prometheusmetrics.Server)
	assert.Equal(t, "/myprom", pm.Path)
	assert.Equal(t, ":6789", pm.Addr)

	app := srv.App.(*vipsop.App)
	assert.IsType(t, &instrumentation.Instrumentation{}, app.Observer)
}

func TestVips(t *testing.T) {
	srv := CreateServer([]string{
		"-vips-library-path", "/opt/lib/libvips.so.42",
		"-vips-concurrency", "2",
		"-vips-max-cache-files", "3",
		"-vips-max-cache-mem", "4",
		"-vips-max-cache-size", "5",
	})
	app := srv.App.(*vipsop.App)
	assert.Equal(t, "/opt/lib/libvips.so.42", app.LibraryPath)
	assert.Equal(t, 2, app.Concurrency)
	assert.Equal(t, 3, app.MaxCacheFiles)
	assert.Equal(t, 4, app.MaxCacheMem)
	assert.Equal(t, 5, app.MaxCacheSize)
}

func TestEnvVars(t *testing.T) {
	t.Setenv("VIPS_LIBRARY_PATH", "/usr/local/lib/libvips.so")
	t.Setenv("VIPSOP_PROCESS_CONCURRENCY", "8")
	t.Setenv("PORT", "3456")

	srv := CreateServer([]string{"-port", "4567"})
	app := srv.App.(*vipsop.App)
	assert.Equal(t, "/usr/local/lib/libvips.so", app.LibraryPath)
	assert.Equal(t, int64(8), app.ProcessConcurrency)
	assert.Equal(t, 4567, srv.Port)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vipsop.env")
	require.NoError(t, os.WriteFile(file, []byte(
		"# vipsop\n"+
			"vipsop-request-timeout=5s\n"+
			"server-path-prefix=\"/convert\"\n"+
			"undefined-flag=foo\n"), 0644))

	srv := CreateServer([]string{"-config", file, "-server-cors"})
	app := srv.App.(*vipsop.App)
	assert.Equal(t, time.Second*5, app.RequestTimeout)
	assert.Equal(t, "/convert", srv.PathPrefix)
}

func TestFileStorage(t *testing.T) {
	srv := CreateServer([]string{
		"-file-safe-chars", "!",
		"-file-storage-base-dir", "./foo",
		"-file-storage-path-prefix", "abcd",
		"-file-storage-mkdir-permission", "0700",
		"-file-storage-write-permission", "0600",
		"-file-storage-save-err-if-exists",
	})
	app := srv.App.(*vipsop.App)
	require.Len(t, app.Storages, 1)
	storage := app.Storages[0].(*filestorage.FileStorage)
	assert.Equal(t, "./foo", storage.BaseDir)
	assert.Equal(t, "/abcd/", storage.PathPrefix)
	assert.Equal(t, "!", storage.SafeChars)
	assert.Equal(t, os.FileMode(0700), storage.MkdirPermission)
	assert.Equal(t, os.FileMode(0600), storage.WritePermission)
	assert.True(t, storage.SaveErrIfExists)
}

func TestApplyFuncs(t *testing.T) {
	var order []string
	var withFoo Func = func(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
		foo := fs.String("foo", "", "foo")
		logger, _ := cb()
		assert.NotNil(t, logger)
		return func(app *vipsop.App) {
			order = append(order, "foo:"+*foo)
		}
	}
	var withBar Func = func(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
		bar := fs.String("bar", "", "bar")
		_, isDebug := cb()
		assert.True(t, isDebug)
		return func(app *vipsop.App) {
			order = append(order, "bar:"+*bar)
		}
	}
	var withoutCallback Func = func(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
		return func(app *vipsop.App) {
			order = append(order, "baz")
		}
	}
	srv := CreateServer([]string{"-debug", "-foo", "a", "-bar", "b"},
		withFoo, nil, withoutCallback, withBar)
	require.NotNil(t, srv)
	assert.Equal(t, []string{"foo:a", "baz", "bar:b"}, order)
}
