package vips

import (
	"fmt"
	"runtime"
	"sync"
)

// imageRef is the handle shared by an owned image and its borrowed views
type imageRef struct {
	lock   sync.RWMutex
	lib    Library
	handle Handle
}

// Image a libvips image handle.
// Owned images release the handle on Close; borrowed views never do.
type Image struct {
	ref   *imageRef
	owned bool

	lock     sync.Mutex
	detached bool
}

// ImageMetadata image dimensions
type ImageMetadata struct {
	Width  int
	Height int
	Bands  int
}

func newImage(lib Library, h Handle) *Image {
	img := &Image{ref: &imageRef{lib: lib, handle: h}, owned: true}
	runtime.SetFinalizer(img, finalizeImage)
	return img
}

// BorrowImage wraps a handle owned elsewhere. The view never releases it.
func BorrowImage(lib Library, h Handle) *Image {
	return &Image{ref: &imageRef{lib: lib, handle: h}}
}

func finalizeImage(r *Image) {
	log("vips", LogLevelDebug, fmt.Sprintf("closing image %p in finalizer", r))
	r.Close()
}

// Borrow returns a view that shares the handle without owning it
func (r *Image) Borrow() *Image {
	return &Image{ref: r.ref}
}

// Owned returns true if Close releases the handle
func (r *Image) Owned() bool {
	return r.owned
}

// Handle returns the native handle, or ErrImageClosed once released
func (r *Image) Handle() (Handle, error) {
	var h Handle
	err := r.use(func(_ Library, handle Handle) error {
		h = handle
		return nil
	})
	return h, err
}

// Metadata reads the image dimensions
func (r *Image) Metadata() (*ImageMetadata, error) {
	var m *ImageMetadata
	err := r.use(func(lib Library, h Handle) error {
		m = &ImageMetadata{
			Width:  lib.ImageWidth(h),
			Height: lib.ImageHeight(h),
			Bands:  lib.ImageBands(h),
		}
		return nil
	})
	return m, err
}

// Width returns the image width, 0 once closed
func (r *Image) Width() int {
	if m, err := r.Metadata(); err == nil {
		return m.Width
	}
	return 0
}

// Height returns the image height, 0 once closed
func (r *Image) Height() int {
	if m, err := r.Metadata(); err == nil {
		return m.Height
	}
	return 0
}

// use runs fn with the live handle. The handle cannot be released while fn runs.
func (r *Image) use(fn func(lib Library, h Handle) error) error {
	if r == nil || r.ref == nil {
		return ErrImageClosed
	}
	r.lock.Lock()
	detached := r.detached
	r.lock.Unlock()
	if detached {
		return ErrImageClosed
	}
	r.ref.lock.RLock()
	defer r.ref.lock.RUnlock()
	if r.ref.handle == 0 {
		return ErrImageClosed
	}
	return fn(r.ref.lib, r.ref.handle)
}

// Close releases an owned handle exactly once.
// On a borrowed view it only detaches the view.
func (r *Image) Close() {
	if r == nil || r.ref == nil {
		return
	}
	r.lock.Lock()
	r.detached = true
	r.lock.Unlock()
	if !r.owned {
		return
	}
	runtime.SetFinalizer(r, nil)
	r.ref.lock.Lock()
	defer r.ref.lock.Unlock()
	if r.ref.handle != 0 {
		r.ref.lib.Unref(r.ref.handle)
		r.ref.handle = 0
		log("vips", LogLevelDebug, fmt.Sprintf("released image %p", r))
	}
}
