package vipsop

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobContentType(t *testing.T) {
	tests := []struct {
		name        string
		buf         []byte
		contentType string
	}{
		{"jpeg", []byte("\xFF\xD8\xFF\xE0rest"), "image/jpeg"},
		{"png", []byte("\x89PNG\r\n\x1a\n"), "image/png"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"tiff le", []byte("II*\x00\x08\x00\x00\x00"), "image/tiff"},
		{"tiff be", []byte("MM\x00*\x00\x00\x00\x08"), "image/tiff"},
		{"bigtiff", []byte("II+\x00\x08\x00\x00\x00"), "image/tiff"},
		{"bmp", []byte("BM\x36\x00\x00\x00"), "image/bmp"},
		{"zip", []byte("PK\x03\x04\x14\x00"), "application/zip"},
		{"text", []byte("hello world"), "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlobFromBytes(tt.buf)
			assert.Equal(t, tt.contentType, b.ContentType())
			assert.Equal(t, len(tt.buf), b.Size())
			assert.Equal(t, tt.name == "bmp", b.IsBMP())
			assert.NoError(t, b.Err())
		})
	}
	b := NewBlobFromBytesWithContentType([]byte("II*\x00"), "application/octet-stream")
	assert.Equal(t, "application/octet-stream", b.ContentType())
}

func TestBlobFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, jpegBody, 0600))
	b := NewBlobFromFile(path)
	assert.Equal(t, path, b.FilePath())
	assert.Equal(t, "image/jpeg", b.ContentType())

	r, size, err := b.NewReader()
	require.NoError(t, err)
	assert.Equal(t, int64(len(jpegBody)), size)
	buf, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.NoError(t, r.Close())
	assert.Equal(t, jpegBody, buf)

	b = NewBlobFromFile(filepath.Join(t.TempDir(), "missing.jpg"))
	_, err = b.ReadAll()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, b.Size())
}

func TestBlobEmpty(t *testing.T) {
	assert.True(t, isEmpty(nil))
	b := NewBlobFromBytes(nil)
	assert.True(t, isEmpty(b))
	assert.Equal(t, ErrEmptyBody, b.Err())
	_, _, err := b.NewReader()
	assert.Equal(t, ErrEmptyBody, err)
	assert.False(t, isEmpty(NewBlobFromBytes([]byte("x"))))
}
