package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_Path(t *testing.T) {
	tests := []struct {
		name       string
		baseDir    string
		prefix     string
		key        string
		blacklist  *regexp.Regexp
		safeChars  string
		expected   string
		expectedOk bool
	}{
		{
			name:       "escape unsafe chars",
			baseDir:    "/home/vipsop",
			key:        "/foo/b{:}ar.tif",
			expected:   "/home/vipsop/foo/b%7B%3A%7Dar.tif",
			expectedOk: true,
		},
		{
			name:       "escape safe chars",
			baseDir:    "/home/vipsop",
			key:        "/foo/b{:}ar.tif",
			expected:   "/home/vipsop/foo/b{%3A}ar.tif",
			safeChars:  "{}",
			expectedOk: true,
		},
		{
			name:       "path under prefix",
			baseDir:    "/home/vipsop",
			prefix:     "/foo",
			key:        "/foo/bar.tif",
			expected:   "/home/vipsop/bar.tif",
			expectedOk: true,
		},
		{
			name:       "path not under prefix",
			baseDir:    "/home/vipsop",
			prefix:     "/foo",
			key:        "/fooo/bar.tif",
			expectedOk: false,
		},
		{
			name:       "traversal cleaned",
			baseDir:    "/home/vipsop",
			key:        "/../../etc/bar.tif",
			expected:   "/home/vipsop/etc/bar.tif",
			expectedOk: true,
		},
		{
			name:       "dot file",
			baseDir:    "/home/vipsop",
			key:        "/foo/.bar.tif",
			expectedOk: false,
		},
		{
			name:       "blacklist",
			baseDir:    "/home/vipsop",
			key:        "/foo/bar.zip",
			blacklist:  regexp.MustCompile("\\.zip$"),
			expectedOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.baseDir, WithPathPrefix(tt.prefix), WithBlacklist(tt.blacklist), WithSafeChars(tt.safeChars))
			res, ok := s.Path(tt.key)
			assert.Equal(t, tt.expectedOk, ok)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestFileStorage_Put(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir, WithPathPrefix("/foo"), WithMkdirPermission("0755"), WithWritePermission("0644"))
	assert.Equal(t, os.FileMode(0755), s.MkdirPermission)
	assert.Equal(t, os.FileMode(0644), s.WritePermission)

	assert.ErrorIs(t, s.Put(ctx, "/bar/a.tif", vipsop.NewBlobFromBytes([]byte("tiff"))), storage.ErrInvalidKey)

	require.NoError(t, s.Put(ctx, "/foo/x/a.tif", vipsop.NewBlobFromBytes([]byte("tiff"))))
	buf, err := os.ReadFile(filepath.Join(dir, "x", "a.tif"))
	require.NoError(t, err)
	assert.Equal(t, "tiff", string(buf))

	require.NoError(t, s.Put(ctx, "/foo/x/a.tif", vipsop.NewBlobFromBytes([]byte("tiff2"))))
	buf, err = os.ReadFile(filepath.Join(dir, "x", "a.tif"))
	require.NoError(t, err)
	assert.Equal(t, "tiff2", string(buf))

	assert.ErrorIs(t, s.Put(ctx, "/foo/x/b.tif", vipsop.NewBlobFromBytes(nil)), vipsop.ErrEmptyBody)
}

func TestFileStorage_SaveErrIfExists(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir(), WithSaveErrIfExists(true))
	require.NoError(t, s.Put(ctx, "/a.tif", vipsop.NewBlobFromBytes([]byte("a"))))
	assert.ErrorIs(t, s.Put(ctx, "/a.tif", vipsop.NewBlobFromBytes([]byte("b"))), os.ErrExist)
}
