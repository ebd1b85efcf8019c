package gcloudstorage

import (
	"strings"

	vstorage "github.com/cshum/vipsop/storage"
)

// Option GCloudStorage option
type Option func(h *GCloudStorage)

// WithBaseDir with base dir option
func WithBaseDir(baseDir string) Option {
	return func(s *GCloudStorage) {
		if baseDir != "" {
			s.BaseDir = strings.Trim(baseDir, "/")
		}
	}
}

// WithPathPrefix with path prefix option
func WithPathPrefix(prefix string) Option {
	return func(s *GCloudStorage) {
		if prefix != "" {
			s.PathPrefix = vstorage.PathPrefix(prefix)
		}
	}
}

// WithACL with predefined ACL option
// https://cloud.google.com/storage/docs/json_api/v1/objects/insert
func WithACL(acl string) Option {
	return func(h *GCloudStorage) {
		h.ACL = acl
	}
}

// WithSafeChars with safe chars option
func WithSafeChars(chars string) Option {
	return func(h *GCloudStorage) {
		if chars != "" {
			h.SafeChars = chars
		}
	}
}

// WithCacheControl with Cache-Control metadata option
func WithCacheControl(cacheControl string) Option {
	return func(h *GCloudStorage) {
		h.CacheControl = cacheControl
	}
}
