package gcloudconfig

import (
	"context"
	"flag"

	"cloud.google.com/go/storage"
	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage/gcloudstorage"
	"go.uber.org/zap"
)

// WithGCloud with Google Cloud Storage config option
func WithGCloud(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
	var (
		gcloudSafeChars = fs.String("gcloud-safe-chars", "",
			"Google Cloud safe characters to be excluded from key escape")
		gcloudStorageBucket = fs.String("gcloud-storage-bucket", "",
			"Bucket name for Google Cloud Storage. Enable Google Cloud Storage only if this value present")
		gcloudStorageBaseDir = fs.String("gcloud-storage-base-dir", "",
			"Base directory for Google Cloud Storage")
		gcloudStoragePathPrefix = fs.String("gcloud-storage-path-prefix", "",
			"Base path prefix for Google Cloud Storage")
		gcloudStorageACL = fs.String("gcloud-storage-acl", "",
			"Upload ACL for Google Cloud Storage")
		gcloudStorageCacheControl = fs.String("gcloud-storage-cache-control", "",
			"Cache-Control metadata for objects saved to Google Cloud Storage")
		_, _ = cb()
	)
	return func(app *vipsop.App) {
		if *gcloudStorageBucket == "" {
			return
		}
		// Google Cloud uses credentials from GOOGLE_APPLICATION_CREDENTIALS env file
		client, err := storage.NewClient(context.Background())
		if err != nil {
			panic(err)
		}
		app.Storages = append(app.Storages,
			gcloudstorage.New(client, *gcloudStorageBucket,
				gcloudstorage.WithPathPrefix(*gcloudStoragePathPrefix),
				gcloudstorage.WithBaseDir(*gcloudStorageBaseDir),
				gcloudstorage.WithACL(*gcloudStorageACL),
				gcloudstorage.WithSafeChars(*gcloudSafeChars),
				gcloudstorage.WithCacheControl(*gcloudStorageCacheControl),
			),
		)
	}
}
