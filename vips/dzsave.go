package vips

// DzSaveParams options for vips_dzsave
type DzSaveParams struct {
	Layout       EnumParameter[DzLayout]
	Suffix       StringParameter
	Overlap      IntParameter
	TileSize     IntParameter
	Centre       BoolParameter
	Depth        EnumParameter[DzDepth]
	Angle        EnumParameter[Angle]
	Container    EnumParameter[DzContainer]
	Compression  IntParameter
	RegionShrink EnumParameter[RegionShrink]
	SkipBlanks   IntParameter
	ID           StringParameter
	Quality      IntParameter
}

func (p *DzSaveParams) validate() error {
	if err := firstError(
		checkEnum(EntryDzSave, "layout", &p.Layout),
		checkRange(EntryDzSave, "overlap", &p.Overlap, 0, 8192),
		checkRange(EntryDzSave, "tile_size", &p.TileSize, 1, 8192),
		checkEnum(EntryDzSave, "depth", &p.Depth),
		checkEnum(EntryDzSave, "angle", &p.Angle),
		checkEnum(EntryDzSave, "container", &p.Container),
		checkRange(EntryDzSave, "compression", &p.Compression, 0, 9),
		checkEnum(EntryDzSave, "region_shrink", &p.RegionShrink),
		checkRange(EntryDzSave, "skip_blanks", &p.SkipBlanks, -1, 65535),
		checkRange(EntryDzSave, "Q", &p.Quality, 1, 100),
	); err != nil {
		return err
	}
	// libvips defaults: tile_size 254, overlap 1
	tileSize, overlap := 254, 1
	if p.TileSize.IsSet() {
		tileSize = p.TileSize.Get()
	}
	if p.Overlap.IsSet() {
		overlap = p.Overlap.Get()
	}
	if overlap >= tileSize {
		return &ConfigError{Op: EntryDzSave, Field: "overlap", Reason: "must be less than tile_size"}
	}
	return nil
}

func (p *DzSaveParams) tail() CallTail {
	return NewVarargs().
		Add("layout", &p.Layout).
		Add("suffix", &p.Suffix).
		Add("overlap", &p.Overlap).
		Add("tile_size", &p.TileSize).
		Add("centre", &p.Centre).
		Add("depth", &p.Depth).
		Add("angle", &p.Angle).
		Add("container", &p.Container).
		Add("compression", &p.Compression).
		Add("region_shrink", &p.RegionShrink).
		Add("skip_blanks", &p.SkipBlanks).
		Add("id", &p.ID).
		Add("Q", &p.Quality).
		Build()
}

// DzSave writes a deep zoom tile pyramid into a temporary directory,
// named "image" within it
type DzSave struct {
	operation
	in     *Image
	params DzSaveParams
}

// NewDzSave creates a DzSave of in
func NewDzSave(in *Image) *DzSave {
	return &DzSave{operation: operation{entry: EntryDzSave}, in: in}
}

// TempDir sets the parent of the output directory, os.TempDir if empty
func (s *DzSave) TempDir(dir string) *DzSave {
	s.tempDir = dir
	return s
}

// Layout sets the directory layout
func (s *DzSave) Layout(l DzLayout) *DzSave {
	s.params.Layout.Set(l)
	return s
}

// Suffix sets the tile file suffix, with save options, e.g. ".jpg[Q=90]"
func (s *DzSave) Suffix(suffix string) *DzSave {
	s.params.Suffix.Set(suffix)
	return s
}

// Overlap sets tile overlap in pixels
func (s *DzSave) Overlap(overlap int) *DzSave {
	s.params.Overlap.Set(overlap)
	return s
}

// TileSize sets tile edge length in pixels
func (s *DzSave) TileSize(size int) *DzSave {
	s.params.TileSize.Set(size)
	return s
}

// Centre centres the image in the tile grid
func (s *DzSave) Centre(centre bool) *DzSave {
	s.params.Centre.Set(centre)
	return s
}

// Depth sets pyramid depth
func (s *DzSave) Depth(d DzDepth) *DzSave {
	s.params.Depth.Set(d)
	return s
}

// Angle rotates the image before tiling
func (s *DzSave) Angle(a Angle) *DzSave {
	s.params.Angle.Set(a)
	return s
}

// Container sets the output container
func (s *DzSave) Container(c DzContainer) *DzSave {
	s.params.Container.Set(c)
	return s
}

// Compression sets zip deflate level, 0 to 9
func (s *DzSave) Compression(level int) *DzSave {
	s.params.Compression.Set(level)
	return s
}

// RegionShrink sets how pyramid layers are shrunk
func (s *DzSave) RegionShrink(r RegionShrink) *DzSave {
	s.params.RegionShrink.Set(r)
	return s
}

// SkipBlanks skips tiles whose pixels are all within this threshold of the background, -1 disables
func (s *DzSave) SkipBlanks(threshold int) *DzSave {
	s.params.SkipBlanks.Set(threshold)
	return s
}

// ID sets the resource id for IIIF layouts
func (s *DzSave) ID(id string) *DzSave {
	s.params.ID.Set(id)
	return s
}

// Quality Q factor for tiles
func (s *DzSave) Quality(q int) *DzSave {
	s.params.Quality.Set(q)
	return s
}

// Params returns a copy of the configured options
func (s *DzSave) Params() DzSaveParams {
	return s.params
}

// Tail returns the option tail the current configuration encodes to
func (s *DzSave) Tail() CallTail {
	p := s.params
	return p.tail()
}

// Save validates and writes the pyramid. The caller owns the returned File; list it with Files.
func (s *DzSave) Save() (*File, error) {
	p := s.params
	dir := s.tempDir
	return s.save(s.in, p.validate, func() (*File, error) {
		return newTempDir(dir, "vipsop-*", "image")
	}, p.tail)
}
