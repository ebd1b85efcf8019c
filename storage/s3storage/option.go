package s3storage

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cshum/vipsop/storage"
)

// Option S3Storage option
type Option func(h *S3Storage)

// WithBaseDir with base dir option
func WithBaseDir(baseDir string) Option {
	return func(s *S3Storage) {
		if baseDir != "" {
			baseDir = "/" + strings.Trim(baseDir, "/")
			if baseDir != "/" {
				baseDir += "/"
			}
			s.BaseDir = baseDir
		}
	}
}

// WithPathPrefix with path prefix option
func WithPathPrefix(prefix string) Option {
	return func(s *S3Storage) {
		if prefix != "" {
			s.PathPrefix = storage.PathPrefix(prefix)
		}
	}
}

var aclValuesMap = (func() map[string]bool {
	m := map[string]bool{}
	for _, acl := range types.ObjectCannedACL("").Values() {
		m[string(acl)] = true
	}
	return m
})()

// WithACL with ACL option
// https://docs.aws.amazon.com/AmazonS3/latest/userguide/acl-overview.html#canned-acl
func WithACL(acl string) Option {
	return func(h *S3Storage) {
		if aclValuesMap[acl] {
			h.ACL = acl
		}
	}
}

// WithSafeChars with safe chars option
func WithSafeChars(chars string) Option {
	return func(h *S3Storage) {
		if chars != "" {
			h.SafeChars = chars
		}
	}
}

var storageClasses = map[string]bool{
	"STANDARD": true, "REDUCED_REDUNDANCY": true, "STANDARD_IA": true, "ONEZONE_IA": true,
	"INTELLIGENT_TIERING": true, "GLACIER": true, "DEEP_ARCHIVE": true,
}

// WithStorageClass with storage class option, STANDARD if unknown
func WithStorageClass(storageClass string) Option {
	return func(h *S3Storage) {
		h.StorageClass = "STANDARD"
		if storageClasses[storageClass] {
			h.StorageClass = storageClass
		}
	}
}

// WithEndpoint with custom S3 endpoint option
func WithEndpoint(endpoint string) Option {
	return func(s *S3Storage) {
		if endpoint != "" {
			s.Endpoint = endpoint
		}
	}
}

// WithForcePathStyle with force path style option
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(s *S3Storage) {
		s.ForcePathStyle = forcePathStyle
	}
}

// WithBucketRouter with key prefix based bucket selection option
func WithBucketRouter(router BucketRouter) Option {
	return func(s *S3Storage) {
		s.BucketRouter = router
	}
}
