package config

import (
	"flag"

	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage/filestorage"
	"go.uber.org/zap"
)

// withFileSystem with File Storage based config option
func withFileSystem(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
	var (
		fileSafeChars = fs.String("file-safe-chars", "",
			"File safe characters to be excluded from key escape")
		fileStorageBaseDir = fs.String("file-storage-base-dir", "",
			"Base directory for File Storage. Enable File Storage only if this value present")
		fileStoragePathPrefix = fs.String("file-storage-path-prefix", "",
			"Base path prefix for File Storage")
		fileStorageMkdirPermission = fs.String("file-storage-mkdir-permission", "0755",
			"File Storage mkdir permission")
		fileStorageWritePermission = fs.String("file-storage-write-permission", "0666",
			"File Storage write permission")
		fileStorageSaveErrIfExists = fs.Bool("file-storage-save-err-if-exists", false,
			"File Storage fails to save if a file of the same key exists")
		_, _ = cb()
	)
	return func(app *vipsop.App) {
		if *fileStorageBaseDir != "" {
			// activate File Storage only if base dir config presents
			app.Storages = append(app.Storages,
				filestorage.New(
					*fileStorageBaseDir,
					filestorage.WithPathPrefix(*fileStoragePathPrefix),
					filestorage.WithMkdirPermission(*fileStorageMkdirPermission),
					filestorage.WithWritePermission(*fileStorageWritePermission),
					filestorage.WithSaveErrIfExists(*fileStorageSaveErrIfExists),
					filestorage.WithSafeChars(*fileSafeChars),
				),
			)
		}
	}
}
