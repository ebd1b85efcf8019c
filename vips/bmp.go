package vips

import (
	"image"
	"image/draw"
	"io"

	"golang.org/x/image/bmp"
)

// NewImageFromBMP decodes a BMP in Go and loads the pixels through the process-wide library
func NewImageFromBMP(r io.Reader) (*Image, error) {
	lib, err := startupIfNeeded()
	if err != nil {
		return nil, err
	}
	return LoadImageFromBMP(lib, r)
}

// LoadImageFromBMP decodes a BMP in Go and loads it as a 4-band image through lib
func LoadImageFromBMP(lib Library, r io.Reader) (*Image, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	rect := img.Bounds()
	size := rect.Size()
	rgba := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(rgba, rgba.Bounds(), img, rect.Min, draw.Src)
	return LoadImageFromMemory(lib, rgba.Pix, size.X, size.Y, 4)
}
