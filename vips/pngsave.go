package vips

// PngSaveParams options for vips_pngsave
type PngSaveParams struct {
	Compression IntParameter
	Interlace   BoolParameter
	Palette     BoolParameter
	Quality     IntParameter
	Dither      DoubleParameter
	Bitdepth    IntParameter
	Effort      IntParameter
	Profile     StringParameter
}

func (p *PngSaveParams) validate() error {
	return firstError(
		checkRange(EntryPngSave, "compression", &p.Compression, 0, 9),
		checkRange(EntryPngSave, "Q", &p.Quality, 0, 100),
		checkDoubleRange(EntryPngSave, "dither", &p.Dither, 0, 1),
		checkOneOf(EntryPngSave, "bitdepth", &p.Bitdepth, 1, 2, 4, 8, 16),
		checkRange(EntryPngSave, "effort", &p.Effort, 1, 10),
	)
}

func (p *PngSaveParams) tail() CallTail {
	return NewVarargs().
		Add("compression", &p.Compression).
		Add("interlace", &p.Interlace).
		Add("palette", &p.Palette).
		Add("Q", &p.Quality).
		Add("dither", &p.Dither).
		Add("bitdepth", &p.Bitdepth).
		Add("effort", &p.Effort).
		Add("profile", &p.Profile).
		Build()
}

// PngSave writes an image to a temporary .png file
type PngSave struct {
	operation
	in     *Image
	params PngSaveParams
}

// NewPngSave creates a PngSave of in
func NewPngSave(in *Image) *PngSave {
	return &PngSave{operation: operation{entry: EntryPngSave}, in: in}
}

// TempDir sets the directory for the output file
func (s *PngSave) TempDir(dir string) *PngSave {
	s.tempDir = dir
	return s
}

// Compression zlib level, 0 to 9
func (s *PngSave) Compression(level int) *PngSave {
	s.params.Compression.Set(level)
	return s
}

// Interlace writes an interlaced png
func (s *PngSave) Interlace(v bool) *PngSave {
	s.params.Interlace.Set(v)
	return s
}

// Palette quantises to an 8-bit palette
func (s *PngSave) Palette(v bool) *PngSave {
	s.params.Palette.Set(v)
	return s
}

// Quality quantisation quality, 0 to 100
func (s *PngSave) Quality(q int) *PngSave {
	s.params.Quality.Set(q)
	return s
}

// Dither amount of palette dithering, 0 to 1
func (s *PngSave) Dither(d float64) *PngSave {
	s.params.Dither.Set(d)
	return s
}

// Bitdepth writes 1, 2, 4, 8 or 16 bit images
func (s *PngSave) Bitdepth(depth int) *PngSave {
	s.params.Bitdepth.Set(depth)
	return s
}

// Effort quantisation CPU effort, 1 to 10
func (s *PngSave) Effort(effort int) *PngSave {
	s.params.Effort.Set(effort)
	return s
}

// Profile ICC profile to embed
func (s *PngSave) Profile(profile string) *PngSave {
	s.params.Profile.Set(profile)
	return s
}

// Tail returns the option tail the current configuration encodes to
func (s *PngSave) Tail() CallTail {
	p := s.params
	return p.tail()
}

// Save validates and writes the image. The caller owns the returned File.
func (s *PngSave) Save() (*File, error) {
	p := s.params
	dir := s.tempDir
	return s.save(s.in, p.validate, func() (*File, error) {
		return newTempFile(dir, "vipsop-*.png")
	}, p.tail)
}
