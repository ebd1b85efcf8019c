package filestorage

import (
	"os"
	"regexp"
	"strconv"

	"github.com/cshum/vipsop/storage"
)

// Option FileStorage option
type Option func(h *FileStorage)

// WithPathPrefix with path prefix option
func WithPathPrefix(prefix string) Option {
	return func(s *FileStorage) {
		if prefix != "" {
			s.PathPrefix = storage.PathPrefix(prefix)
		}
	}
}

// WithBlacklist with key blacklist option
func WithBlacklist(blacklist *regexp.Regexp) Option {
	return func(s *FileStorage) {
		if blacklist != nil {
			s.Blacklists = append(s.Blacklists, blacklist)
		}
	}
}

// WithMkdirPermission with octal directory permission option
func WithMkdirPermission(perm string) Option {
	return func(h *FileStorage) {
		if perm != "" {
			if fm, err := strconv.ParseUint(perm, 0, 32); err == nil {
				h.MkdirPermission = os.FileMode(fm)
			}
		}
	}
}

// WithWritePermission with octal file permission option
func WithWritePermission(perm string) Option {
	return func(h *FileStorage) {
		if perm != "" {
			if fm, err := strconv.ParseUint(perm, 0, 32); err == nil {
				h.WritePermission = os.FileMode(fm)
			}
		}
	}
}

// WithSaveErrIfExists with fail on existing file option
func WithSaveErrIfExists(saveErrIfExists bool) Option {
	return func(h *FileStorage) {
		h.SaveErrIfExists = saveErrIfExists
	}
}

// WithSafeChars with safe chars option
func WithSafeChars(chars string) Option {
	return func(h *FileStorage) {
		if chars != "" {
			h.SafeChars = chars
		}
	}
}
