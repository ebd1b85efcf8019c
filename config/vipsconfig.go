package config

import (
	"flag"

	"github.com/cshum/vipsop"
	"go.uber.org/zap"
)

// withVips with libvips binding config option
func withVips(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
	var (
		vipsLibraryPath = fs.String("vips-library-path", "",
			"Path to the libvips shared library. Defaults to the platform library name")
		vipsConcurrency = fs.Int("vips-concurrency", -1,
			"VIPS concurrency. Set -1 to be the number of CPU cores")
		vipsMaxCacheFiles = fs.Int("vips-max-cache-files", -1,
			"VIPS max cache files. Set -1 for libvips default")
		vipsMaxCacheSize = fs.Int("vips-max-cache-size", -1,
			"VIPS max cache size. Set -1 for libvips default")
		vipsMaxCacheMem = fs.Int("vips-max-cache-mem", -1,
			"VIPS max cache mem. Set -1 for libvips default")
		_, _ = cb()
	)
	return func(app *vipsop.App) {
		app.LibraryPath = *vipsLibraryPath
		app.Concurrency = *vipsConcurrency
		app.MaxCacheFiles = *vipsMaxCacheFiles
		app.MaxCacheSize = *vipsMaxCacheSize
		app.MaxCacheMem = *vipsMaxCacheMem
	}
}
