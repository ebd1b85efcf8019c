package vips

// JpegSaveParams options for vips_jpegsave
type JpegSaveParams struct {
	Quality            IntParameter
	OptimizeCoding     BoolParameter
	Interlace          BoolParameter
	SubsampleMode      EnumParameter[Subsample]
	TrellisQuant       BoolParameter
	OvershootDeringing BoolParameter
	OptimizeScans      BoolParameter
	QuantTable         IntParameter
	Profile            StringParameter
}

func (p *JpegSaveParams) validate() error {
	return firstError(
		checkRange(EntryJpegSave, "Q", &p.Quality, 1, 100),
		checkEnum(EntryJpegSave, "subsample_mode", &p.SubsampleMode),
		checkRange(EntryJpegSave, "quant_table", &p.QuantTable, 0, 8),
	)
}

func (p *JpegSaveParams) tail() CallTail {
	return NewVarargs().
		Add("Q", &p.Quality).
		Add("optimize_coding", &p.OptimizeCoding).
		Add("interlace", &p.Interlace).
		Add("subsample_mode", &p.SubsampleMode).
		Add("trellis_quant", &p.TrellisQuant).
		Add("overshoot_deringing", &p.OvershootDeringing).
		Add("optimize_scans", &p.OptimizeScans).
		Add("quant_table", &p.QuantTable).
		Add("profile", &p.Profile).
		Build()
}

// JpegSave writes an image to a temporary .jpg file
type JpegSave struct {
	operation
	in     *Image
	params JpegSaveParams
}

// NewJpegSave creates a JpegSave of in
func NewJpegSave(in *Image) *JpegSave {
	return &JpegSave{operation: operation{entry: EntryJpegSave}, in: in}
}

// TempDir sets the directory for the output file
func (s *JpegSave) TempDir(dir string) *JpegSave {
	s.tempDir = dir
	return s
}

// Quality Q factor, 1 to 100
func (s *JpegSave) Quality(q int) *JpegSave {
	s.params.Quality.Set(q)
	return s
}

// OptimizeCoding computes optimal Huffman tables
func (s *JpegSave) OptimizeCoding(v bool) *JpegSave {
	s.params.OptimizeCoding.Set(v)
	return s
}

// Interlace writes a progressive jpeg
func (s *JpegSave) Interlace(v bool) *JpegSave {
	s.params.Interlace.Set(v)
	return s
}

// SubsampleMode sets chroma subsampling
func (s *JpegSave) SubsampleMode(m Subsample) *JpegSave {
	s.params.SubsampleMode.Set(m)
	return s
}

// TrellisQuant applies trellis quantisation
func (s *JpegSave) TrellisQuant(v bool) *JpegSave {
	s.params.TrellisQuant.Set(v)
	return s
}

// OvershootDeringing applies overshooting to samples with extreme values
func (s *JpegSave) OvershootDeringing(v bool) *JpegSave {
	s.params.OvershootDeringing.Set(v)
	return s
}

// OptimizeScans splits DCT coefficients into separate scans
func (s *JpegSave) OptimizeScans(v bool) *JpegSave {
	s.params.OptimizeScans.Set(v)
	return s
}

// QuantTable selects a quantization table, 0 to 8
func (s *JpegSave) QuantTable(t int) *JpegSave {
	s.params.QuantTable.Set(t)
	return s
}

// Profile ICC profile to embed
func (s *JpegSave) Profile(profile string) *JpegSave {
	s.params.Profile.Set(profile)
	return s
}

// Tail returns the option tail the current configuration encodes to
func (s *JpegSave) Tail() CallTail {
	p := s.params
	return p.tail()
}

// Save validates and writes the image. The caller owns the returned File.
func (s *JpegSave) Save() (*File, error) {
	p := s.params
	dir := s.tempDir
	return s.save(s.in, p.validate, func() (*File, error) {
		return newTempFile(dir, "vipsop-*.jpg")
	}, p.tail)
}
