package gcloudstorage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cshum/vipsop"
	vstorage "github.com/cshum/vipsop/storage"
)

// GCloudStorage Google Cloud Storage implements vipsop.Storage
type GCloudStorage struct {
	BaseDir      string
	PathPrefix   string
	ACL          string
	SafeChars    string
	CacheControl string
	Bucket       string

	client    *storage.Client
	safeChars vstorage.SafeChars
}

// New creates GCloudStorage
func New(client *storage.Client, bucket string, options ...Option) *GCloudStorage {
	s := &GCloudStorage{client: client, Bucket: bucket, PathPrefix: "/"}
	for _, option := range options {
		option(s)
	}
	s.safeChars = vstorage.NewSafeChars(s.SafeChars)
	return s
}

// Path transforms and validates key into an object name
func (s *GCloudStorage) Path(key string) (string, bool) {
	key = "/" + vstorage.Normalize(key, s.safeChars)
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", false
	}
	// object names do not start with "/"
	return strings.Trim(path.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix)), "/"), true
}

// Put implements vipsop.Storage
func (s *GCloudStorage) Put(ctx context.Context, key string, blob *vipsop.Blob) (err error) {
	start := time.Now()
	defer func() {
		vstorage.ObservePut("GCloudStorage", start, err)
	}()
	name, ok := s.Path(key)
	if !ok {
		return vstorage.ErrInvalidKey
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	writer := s.client.Bucket(s.Bucket).Object(name).NewWriter(ctx)
	if s.ACL != "" {
		writer.PredefinedACL = s.ACL
	}
	if s.CacheControl != "" {
		writer.CacheControl = s.CacheControl
	}
	writer.ContentType = blob.ContentType()
	if _, err = io.Copy(writer, bytes.NewReader(buf)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}
