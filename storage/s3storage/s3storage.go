package s3storage

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage"
)

// S3Storage AWS S3 storage implements vipsop.Storage
type S3Storage struct {
	S3     *s3.Client
	Bucket string

	BaseDir        string
	PathPrefix     string
	ACL            string
	SafeChars      string
	StorageClass   string
	Endpoint       string
	ForcePathStyle bool
	BucketRouter   BucketRouter

	safeChars storage.SafeChars
}

// New creates S3Storage. A bucket of the form "bucket/dir" sets the base dir.
func New(cfg aws.Config, bucket string, options ...Option) *S3Storage {
	baseDir := "/"
	if idx := strings.Index(bucket, "/"); idx > -1 {
		baseDir = bucket[idx:]
		bucket = bucket[:idx]
	}
	s := &S3Storage{
		Bucket:       bucket,
		BaseDir:      baseDir,
		PathPrefix:   "/",
		ACL:          string(types.ObjectCannedACLPublicRead),
		StorageClass: "STANDARD",
	}
	for _, option := range options {
		option(s)
	}
	s.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s.ForcePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	})
	// https://docs.aws.amazon.com/AmazonS3/latest/userguide/object-keys.html#object-key-guidelines-safe-characters
	s.safeChars = storage.NewSafeChars("!\"()*" + s.SafeChars)
	return s
}

// Path transforms and validates key into the bucket and object key
func (s *S3Storage) Path(key string) (bucket, objectKey string, ok bool) {
	key = "/" + storage.Normalize(key, s.safeChars)
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", "", false
	}
	bucket = s.Bucket
	if s.BucketRouter != nil {
		if b := s.BucketRouter.BucketFor(key); b != "" {
			bucket = b
		}
	}
	return bucket, path.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix)), true
}

// Put implements vipsop.Storage
func (s *S3Storage) Put(ctx context.Context, key string, blob *vipsop.Blob) (err error) {
	start := time.Now()
	defer func() {
		storage.ObservePut("S3Storage", start, err)
	}()
	bucket, objectKey, ok := s.Path(key)
	if !ok {
		return storage.ErrInvalidKey
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		ACL:           types.ObjectCannedACL(s.ACL),
		Body:          bytes.NewReader(buf),
		Bucket:        aws.String(bucket),
		ContentType:   aws.String(blob.ContentType()),
		ContentLength: aws.Int64(int64(len(buf))),
		Key:           aws.String(objectKey),
		StorageClass:  types.StorageClass(s.StorageClass),
	}
	_, err = s.S3.PutObject(ctx, input)
	return err
}
