package vips

import (
	"fmt"
	"os"
)

// LoadParams options for vips_image_new_from_file
type LoadParams struct {
	Access     EnumParameter[Access]
	Memory     BoolParameter
	Revalidate BoolParameter
}

// NewLoadParams creates default LoadParams
func NewLoadParams() *LoadParams {
	return &LoadParams{}
}

func (p *LoadParams) tail() CallTail {
	if p == nil {
		return NewVarargs().Build()
	}
	return NewVarargs().
		Add("access", &p.Access).
		Add("memory", &p.Memory).
		Add("revalidate", &p.Revalidate).
		Build()
}

// NewImageFromFile loads an owned image through the process-wide library
func NewImageFromFile(file string, params *LoadParams) (*Image, error) {
	lib, err := startupIfNeeded()
	if err != nil {
		return nil, err
	}
	return LoadImageFromFile(lib, file, params)
}

// NewImageFromMemory loads an owned 8-bit image from packed pixels through the process-wide library
func NewImageFromMemory(pix []byte, width, height, bands int) (*Image, error) {
	lib, err := startupIfNeeded()
	if err != nil {
		return nil, err
	}
	return LoadImageFromMemory(lib, pix, width, height, bands)
}

// LoadImageFromFile loads an owned image through lib
func LoadImageFromFile(lib Library, file string, params *LoadParams) (*Image, error) {
	if file == "" {
		return nil, &ConfigError{Op: EntryNewFromFile, Field: "filename", Reason: "empty"}
	}
	if params != nil {
		if err := checkEnum(EntryNewFromFile, "access", &params.Access); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(file); err != nil {
		return nil, err
	}
	h := lib.NewImageFromFile(file, params.tail())
	if h == 0 {
		return nil, handleCallError(lib, EntryNewFromFile, -1)
	}
	return newImage(lib, h), nil
}

// LoadImageFromMemory loads an owned 8-bit image from width*height*bands packed pixels through lib
func LoadImageFromMemory(lib Library, pix []byte, width, height, bands int) (*Image, error) {
	if width <= 0 || height <= 0 || bands <= 0 {
		return nil, &ConfigError{Op: EntryNewFromMemory, Field: "dimensions",
			Reason: fmt.Sprintf("%dx%dx%d must be positive", width, height, bands)}
	}
	if len(pix) != width*height*bands {
		return nil, &ConfigError{Op: EntryNewFromMemory, Field: "data",
			Reason: fmt.Sprintf("%d bytes, want %d", len(pix), width*height*bands)}
	}
	h := lib.NewImageFromMemory(pix, width, height, bands)
	if h == 0 {
		return nil, handleCallError(lib, EntryNewFromMemory, -1)
	}
	return newImage(lib, h), nil
}
