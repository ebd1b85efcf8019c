package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage"
)

var dotFileRegex = regexp.MustCompile("/\\.")

// FileStorage writes results under a base directory
type FileStorage struct {
	BaseDir         string
	PathPrefix      string
	Blacklists      []*regexp.Regexp
	MkdirPermission os.FileMode
	WritePermission os.FileMode
	SaveErrIfExists bool
	SafeChars       string

	safeChars storage.SafeChars
}

// New creates FileStorage
func New(baseDir string, options ...Option) *FileStorage {
	s := &FileStorage{
		BaseDir:         baseDir,
		PathPrefix:      "/",
		Blacklists:      []*regexp.Regexp{dotFileRegex},
		MkdirPermission: 0755,
		WritePermission: 0666,
	}
	for _, option := range options {
		option(s)
	}
	s.safeChars = storage.NewSafeChars(s.SafeChars)
	return s
}

// Path transforms and validates key into a file path
func (s *FileStorage) Path(key string) (string, bool) {
	key = "/" + storage.Normalize(key, s.safeChars)
	for _, blacklist := range s.Blacklists {
		if blacklist.MatchString(key) {
			return "", false
		}
	}
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", false
	}
	return filepath.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix)), true
}

// Put implements vipsop.Storage
func (s *FileStorage) Put(_ context.Context, key string, blob *vipsop.Blob) (err error) {
	start := time.Now()
	defer func() {
		storage.ObservePut("FileStorage", start, err)
	}()
	path, ok := s.Path(key)
	if !ok {
		return storage.ErrInvalidKey
	}
	if err = os.MkdirAll(filepath.Dir(path), s.MkdirPermission); err != nil {
		return
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	flag := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if s.SaveErrIfExists {
		flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	w, err := os.OpenFile(path, flag, s.WritePermission)
	if err != nil {
		return
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.Write(buf)
	return
}
