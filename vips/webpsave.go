package vips

// WebpSaveParams options for vips_webpsave
type WebpSaveParams struct {
	Quality        IntParameter
	Lossless       BoolParameter
	Preset         EnumParameter[WebpPreset]
	SmartSubsample BoolParameter
	NearLossless   BoolParameter
	AlphaQuality   IntParameter
	MinSize        BoolParameter
	Kmin           IntParameter
	Kmax           IntParameter
	Effort         IntParameter
	Profile        StringParameter
}

func (p *WebpSaveParams) validate() error {
	return firstError(
		checkRange(EntryWebpSave, "Q", &p.Quality, 0, 100),
		checkEnum(EntryWebpSave, "preset", &p.Preset),
		checkRange(EntryWebpSave, "alpha_q", &p.AlphaQuality, 0, 100),
		checkRange(EntryWebpSave, "effort", &p.Effort, 0, 6),
	)
}

func (p *WebpSaveParams) tail() CallTail {
	return NewVarargs().
		Add("Q", &p.Quality).
		Add("lossless", &p.Lossless).
		Add("preset", &p.Preset).
		Add("smart_subsample", &p.SmartSubsample).
		Add("near_lossless", &p.NearLossless).
		Add("alpha_q", &p.AlphaQuality).
		Add("min_size", &p.MinSize).
		Add("kmin", &p.Kmin).
		Add("kmax", &p.Kmax).
		Add("effort", &p.Effort).
		Add("profile", &p.Profile).
		Build()
}

// WebpSave writes an image to a temporary .webp file
type WebpSave struct {
	operation
	in     *Image
	params WebpSaveParams
}

// NewWebpSave creates a WebpSave of in
func NewWebpSave(in *Image) *WebpSave {
	return &WebpSave{operation: operation{entry: EntryWebpSave}, in: in}
}

// TempDir sets the directory for the output file
func (s *WebpSave) TempDir(dir string) *WebpSave {
	s.tempDir = dir
	return s
}

// Quality Q factor, 0 to 100
func (s *WebpSave) Quality(q int) *WebpSave {
	s.params.Quality.Set(q)
	return s
}

// Lossless enables lossless compression
func (s *WebpSave) Lossless(v bool) *WebpSave {
	s.params.Lossless.Set(v)
	return s
}

// Preset sets the encoder preset
func (s *WebpSave) Preset(p WebpPreset) *WebpSave {
	s.params.Preset.Set(p)
	return s
}

// SmartSubsample enables high quality chroma subsampling
func (s *WebpSave) SmartSubsample(v bool) *WebpSave {
	s.params.SmartSubsample.Set(v)
	return s
}

// NearLossless preprocesses in lossless mode, using Q
func (s *WebpSave) NearLossless(v bool) *WebpSave {
	s.params.NearLossless.Set(v)
	return s
}

// AlphaQuality alpha channel quality, 0 to 100
func (s *WebpSave) AlphaQuality(q int) *WebpSave {
	s.params.AlphaQuality.Set(q)
	return s
}

// MinSize minimises animation size
func (s *WebpSave) MinSize(v bool) *WebpSave {
	s.params.MinSize.Set(v)
	return s
}

// KeyframeRange sets minimum and maximum animation keyframe distance
func (s *WebpSave) KeyframeRange(kmin, kmax int) *WebpSave {
	s.params.Kmin.Set(kmin)
	s.params.Kmax.Set(kmax)
	return s
}

// Kmin sets minimum animation keyframe distance
func (s *WebpSave) Kmin(kmin int) *WebpSave {
	s.params.Kmin.Set(kmin)
	return s
}

// Kmax sets maximum animation keyframe distance
func (s *WebpSave) Kmax(kmax int) *WebpSave {
	s.params.Kmax.Set(kmax)
	return s
}

// Effort CPU effort, 0 to 6
func (s *WebpSave) Effort(effort int) *WebpSave {
	s.params.Effort.Set(effort)
	return s
}

// Profile ICC profile to embed
func (s *WebpSave) Profile(profile string) *WebpSave {
	s.params.Profile.Set(profile)
	return s
}

// Tail returns the option tail the current configuration encodes to
func (s *WebpSave) Tail() CallTail {
	p := s.params
	return p.tail()
}

// Save validates and writes the image. The caller owns the returned File.
func (s *WebpSave) Save() (*File, error) {
	p := s.params
	dir := s.tempDir
	return s.save(s.in, p.validate, func() (*File, error) {
		return newTempFile(dir, "vipsop-*.webp")
	}, p.tail)
}
