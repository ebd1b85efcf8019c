package vipsop

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"sync"
)

// Blob abstraction for file path or bytes data with a detected content type
type Blob struct {
	path        string
	buf         []byte
	contentType string

	once sync.Once
	err  error
}

// NewBlobFromFile creates Blob from file path, read lazily
func NewBlobFromFile(filepath string) *Blob {
	return &Blob{path: filepath}
}

// NewBlobFromBytes creates Blob from bytes
func NewBlobFromBytes(buf []byte) *Blob {
	return &Blob{buf: buf}
}

// NewBlobFromBytesWithContentType creates Blob from bytes with an explicit content type
func NewBlobFromBytesWithContentType(buf []byte, contentType string) *Blob {
	return &Blob{buf: buf, contentType: contentType}
}

var (
	jpegHeader   = []byte("\xFF\xD8\xFF")
	pngHeader    = []byte("\x89\x50\x4E\x47")
	gifHeader    = []byte("\x47\x49\x46")
	webpHeader   = []byte("\x57\x45\x42\x50")
	riffHeader   = []byte("RIFF")
	tiffIIHeader = []byte("\x49\x49\x2A\x00")
	tiffMMHeader = []byte("\x4D\x4D\x00\x2A")
	bigTiffII    = []byte("\x49\x49\x2B\x00")
	bigTiffMM    = []byte("\x4D\x4D\x00\x2B")
	bmpHeader    = []byte("BM")
	zipHeader    = []byte("PK\x03\x04")
)

func (b *Blob) readAllOnce() {
	b.once.Do(func() {
		if len(b.buf) == 0 && b.path != "" {
			b.buf, b.err = os.ReadFile(b.path)
		}
		if b.err == nil && len(b.buf) == 0 {
			b.err = ErrEmptyBody
			return
		}
		if b.contentType == "" {
			b.contentType = detectContentType(b.buf)
		}
	})
}

func detectContentType(buf []byte) string {
	switch {
	case bytes.HasPrefix(buf, jpegHeader):
		return "image/jpeg"
	case bytes.HasPrefix(buf, pngHeader):
		return "image/png"
	case bytes.HasPrefix(buf, gifHeader):
		return "image/gif"
	case len(buf) >= 12 && bytes.HasPrefix(buf, riffHeader) && bytes.Equal(buf[8:12], webpHeader):
		return "image/webp"
	case bytes.HasPrefix(buf, tiffIIHeader), bytes.HasPrefix(buf, tiffMMHeader),
		bytes.HasPrefix(buf, bigTiffII), bytes.HasPrefix(buf, bigTiffMM):
		return "image/tiff"
	case bytes.HasPrefix(buf, bmpHeader):
		return "image/bmp"
	case bytes.HasPrefix(buf, zipHeader):
		return "application/zip"
	}
	return http.DetectContentType(buf)
}

// ReadAll reads all bytes of the Blob
func (b *Blob) ReadAll() ([]byte, error) {
	b.readAllOnce()
	return b.buf, b.err
}

// NewReader creates a reader over the Blob with its size
func (b *Blob) NewReader() (io.ReadCloser, int64, error) {
	buf, err := b.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	return io.NopCloser(bytes.NewReader(buf)), int64(len(buf)), nil
}

// Err returns the read error, if any
func (b *Blob) Err() error {
	b.readAllOnce()
	return b.err
}

// Size returns the byte length
func (b *Blob) Size() int {
	b.readAllOnce()
	return len(b.buf)
}

// ContentType returns the detected or assigned content type
func (b *Blob) ContentType() string {
	b.readAllOnce()
	return b.contentType
}

// FilePath returns the source file path, empty for in-memory blobs
func (b *Blob) FilePath() string {
	return b.path
}

// IsBMP returns true if the Blob holds a BMP image
func (b *Blob) IsBMP() bool {
	return b.ContentType() == "image/bmp"
}

func isEmpty(b *Blob) bool {
	return b == nil || b.Size() == 0
}
