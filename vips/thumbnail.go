package vips

import "fmt"

// ThumbnailParams options for vips_thumbnail_image
type ThumbnailParams struct {
	Height        IntParameter
	Size          EnumParameter[Size]
	Crop          EnumParameter[Interesting]
	NoRotate      BoolParameter
	Linear        BoolParameter
	ImportProfile StringParameter
	ExportProfile StringParameter
}

func (p *ThumbnailParams) tail() CallTail {
	return NewVarargs().
		Add("height", &p.Height).
		Add("size", &p.Size).
		Add("crop", &p.Crop).
		Add("no_rotate", &p.NoRotate).
		Add("linear", &p.Linear).
		Add("import_profile", &p.ImportProfile).
		Add("export_profile", &p.ExportProfile).
		Build()
}

// Thumbnail resizes an image to fit a width, and optionally a height
type Thumbnail struct {
	operation
	in     *Image
	width  int
	params ThumbnailParams
}

// NewThumbnail creates a Thumbnail of in with target width
func NewThumbnail(in *Image, width int) *Thumbnail {
	return &Thumbnail{operation: operation{entry: EntryThumbnailImage}, in: in, width: width}
}

// Width sets the target width
func (t *Thumbnail) Width(width int) *Thumbnail {
	t.width = width
	return t
}

// Height sets the target height
func (t *Thumbnail) Height(height int) *Thumbnail {
	t.params.Height.Set(height)
	return t
}

// Size sets when to upsize or downsize
func (t *Thumbnail) Size(s Size) *Thumbnail {
	t.params.Size.Set(s)
	return t
}

// Crop fills the target box, cropping with the given strategy
func (t *Thumbnail) Crop(i Interesting) *Thumbnail {
	t.params.Crop.Set(i)
	return t
}

// NoRotate skips orientation tag auto rotation
func (t *Thumbnail) NoRotate(v bool) *Thumbnail {
	t.params.NoRotate.Set(v)
	return t
}

// Linear shrinks in linear light
func (t *Thumbnail) Linear(v bool) *Thumbnail {
	t.params.Linear.Set(v)
	return t
}

// ImportProfile fallback input ICC profile
func (t *Thumbnail) ImportProfile(profile string) *Thumbnail {
	t.params.ImportProfile.Set(profile)
	return t
}

// ExportProfile output ICC profile
func (t *Thumbnail) ExportProfile(profile string) *Thumbnail {
	t.params.ExportProfile.Set(profile)
	return t
}

// Tail returns the option tail the current configuration encodes to
func (t *Thumbnail) Tail() CallTail {
	p := t.params
	return p.tail()
}

// Execute validates and resizes. The caller owns the returned Image.
func (t *Thumbnail) Execute() (*Image, error) {
	p := t.params
	width := t.width
	return t.convert(t.in, func() error {
		if width <= 0 {
			return &ConfigError{Op: EntryThumbnailImage, Field: "width", Reason: fmt.Sprintf("%d must be positive", width)}
		}
		return firstError(
			checkRange(EntryThumbnailImage, "height", &p.Height, 1, 10000000),
			checkEnum(EntryThumbnailImage, "size", &p.Size),
			checkEnum(EntryThumbnailImage, "crop", &p.Crop),
		)
	}, func() []Arg {
		return []Arg{Int(width)}
	}, p.tail)
}
