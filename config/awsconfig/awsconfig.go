package awsconfig

import (
	"context"
	"flag"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage/s3storage"
	"go.uber.org/zap"
)

// WithAWS with AWS S3 Storage config option
func WithAWS(fs *flag.FlagSet, cb func() (*zap.Logger, bool)) vipsop.Option {
	var (
		awsRegion = fs.String("aws-region", "",
			"AWS Region. Required if using S3 Storage")
		awsAccessKeyId = fs.String("aws-access-key-id", "",
			"AWS Access Key ID. Falls back to the default credential chain if empty")
		awsSecretAccessKey = fs.String("aws-secret-access-key", "",
			"AWS Secret Access Key")
		awsSessionToken = fs.String("aws-session-token", "",
			"AWS Session Token. Optional temporary credentials")
		s3Endpoint = fs.String("s3-endpoint", "",
			"Optional S3 Endpoint to override default")
		s3ForcePathStyle = fs.Bool("s3-force-path-style", false,
			"S3 force the request to use path-style addressing s3.amazonaws.com/bucket/key, instead of bucket.s3.amazonaws.com/key")
		s3SafeChars = fs.String("s3-safe-chars", "",
			"S3 safe characters to be excluded from key escape")
		s3StorageBucket = fs.String("s3-storage-bucket", "",
			"S3 Bucket for S3 Storage. Enable S3 Storage only if this value present")
		s3StorageBaseDir = fs.String("s3-storage-base-dir", "",
			"Base directory for S3 Storage")
		s3StoragePathPrefix = fs.String("s3-storage-path-prefix", "",
			"Base path prefix for S3 Storage")
		s3StorageACL = fs.String("s3-storage-acl", "public-read",
			"Upload ACL for S3 Storage")
		s3StorageClass = fs.String("s3-storage-class", "STANDARD",
			"S3 storage class e.g. STANDARD, STANDARD_IA, GLACIER")
		s3StorageBucketRules = fs.String("s3-storage-bucket-rules", "",
			"Key prefix to bucket rules e.g. tiles=tile-bucket,thumbs=thumb-bucket. Unmatched keys go to s3-storage-bucket")

		logger, _ = cb()
	)
	return func(app *vipsop.App) {
		if *s3StorageBucket == "" {
			return
		}
		// activate S3 Storage only if bucket config presents
		var loadOptions []func(*awscfg.LoadOptions) error
		if *awsRegion != "" {
			loadOptions = append(loadOptions, awscfg.WithRegion(*awsRegion))
		}
		if *awsAccessKeyId != "" && *awsSecretAccessKey != "" {
			loadOptions = append(loadOptions, awscfg.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					*awsAccessKeyId, *awsSecretAccessKey, *awsSessionToken)))
		}
		cfg, err := awscfg.LoadDefaultConfig(context.Background(), loadOptions...)
		if err != nil {
			panic(err)
		}
		options := []s3storage.Option{
			s3storage.WithPathPrefix(*s3StoragePathPrefix),
			s3storage.WithBaseDir(*s3StorageBaseDir),
			s3storage.WithACL(*s3StorageACL),
			s3storage.WithSafeChars(*s3SafeChars),
			s3storage.WithStorageClass(*s3StorageClass),
			s3storage.WithEndpoint(*s3Endpoint),
			s3storage.WithForcePathStyle(*s3ForcePathStyle),
		}
		if rules := s3storage.ParsePrefixRules(*s3StorageBucketRules); len(rules) > 0 {
			logger.Debug("s3 bucket rules", zap.Int("count", len(rules)))
			options = append(options, s3storage.WithBucketRouter(
				s3storage.NewPrefixRouter(rules, "")))
		}
		app.Storages = append(app.Storages, s3storage.New(cfg, *s3StorageBucket, options...))
	}
}
