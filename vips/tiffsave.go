package vips

// TiffSaveParams options for vips_tiffsave, left to the libvips defaults when unset
type TiffSaveParams struct {
	Quality      IntParameter
	Compression  EnumParameter[TiffCompression]
	Tile         BoolParameter
	TileWidth    IntParameter
	TileHeight   IntParameter
	Pyramid      BoolParameter
	Predictor    EnumParameter[TiffPredictor]
	Profile      StringParameter
	Bitdepth     IntParameter
	Miniswhite   BoolParameter
	Resunit      EnumParameter[TiffResunit]
	Xres         DoubleParameter
	Yres         DoubleParameter
	Bigtiff      BoolParameter
	Properties   BoolParameter
	RegionShrink EnumParameter[RegionShrink]
	Depth        EnumParameter[DzDepth]
	Level        IntParameter
	Lossless     BoolParameter
	Subifd       BoolParameter
}

func (p *TiffSaveParams) validate() error {
	return firstError(
		checkRange(EntryTiffSave, "Q", &p.Quality, 1, 100),
		checkEnum(EntryTiffSave, "compression", &p.Compression),
		checkTileSize(EntryTiffSave, "tile_width", &p.TileWidth),
		checkTileSize(EntryTiffSave, "tile_height", &p.TileHeight),
		checkEnum(EntryTiffSave, "predictor", &p.Predictor),
		checkOneOf(EntryTiffSave, "bitdepth", &p.Bitdepth, 1, 2, 4, 8),
		checkEnum(EntryTiffSave, "resunit", &p.Resunit),
		checkDoubleRange(EntryTiffSave, "xres", &p.Xres, 0.001, 1e6),
		checkDoubleRange(EntryTiffSave, "yres", &p.Yres, 0.001, 1e6),
		checkEnum(EntryTiffSave, "region_shrink", &p.RegionShrink),
		checkEnum(EntryTiffSave, "depth", &p.Depth),
		checkRange(EntryTiffSave, "level", &p.Level, 0, 22),
	)
}

func (p *TiffSaveParams) tail() CallTail {
	return NewVarargs().
		Add("Q", &p.Quality).
		Add("compression", &p.Compression).
		Add("tile", &p.Tile).
		Add("tile_width", &p.TileWidth).
		Add("tile_height", &p.TileHeight).
		Add("pyramid", &p.Pyramid).
		Add("predictor", &p.Predictor).
		Add("profile", &p.Profile).
		Add("bitdepth", &p.Bitdepth).
		Add("miniswhite", &p.Miniswhite).
		Add("resunit", &p.Resunit).
		Add("xres", &p.Xres).
		Add("yres", &p.Yres).
		Add("bigtiff", &p.Bigtiff).
		Add("properties", &p.Properties).
		Add("region_shrink", &p.RegionShrink).
		Add("depth", &p.Depth).
		Add("level", &p.Level).
		Add("lossless", &p.Lossless).
		Add("subifd", &p.Subifd).
		Build()
}

// TiffSave writes an image to a temporary .tif file
type TiffSave struct {
	operation
	in     *Image
	params TiffSaveParams
}

// NewTiffSave creates a TiffSave of in
func NewTiffSave(in *Image) *TiffSave {
	return &TiffSave{operation: operation{entry: EntryTiffSave}, in: in}
}

// TempDir sets the directory for the output file, os.TempDir if empty
func (s *TiffSave) TempDir(dir string) *TiffSave {
	s.tempDir = dir
	return s
}

// Quality Q factor, 1 to 100
func (s *TiffSave) Quality(q int) *TiffSave {
	s.params.Quality.Set(q)
	return s
}

// Compression sets the compression scheme
func (s *TiffSave) Compression(c TiffCompression) *TiffSave {
	s.params.Compression.Set(c)
	return s
}

// Tile writes a tiled tiff
func (s *TiffSave) Tile(tile bool) *TiffSave {
	s.params.Tile.Set(tile)
	return s
}

// TileSize sets tile width and height, each a positive multiple of 128
func (s *TiffSave) TileSize(width, height int) *TiffSave {
	s.params.TileWidth.Set(width)
	s.params.TileHeight.Set(height)
	return s
}

// TileWidth sets the tile width
func (s *TiffSave) TileWidth(width int) *TiffSave {
	s.params.TileWidth.Set(width)
	return s
}

// TileHeight sets the tile height
func (s *TiffSave) TileHeight(height int) *TiffSave {
	s.params.TileHeight.Set(height)
	return s
}

// Pyramid writes an image pyramid
func (s *TiffSave) Pyramid(pyramid bool) *TiffSave {
	s.params.Pyramid.Set(pyramid)
	return s
}

// Predictor sets the compression predictor
func (s *TiffSave) Predictor(p TiffPredictor) *TiffSave {
	s.params.Predictor.Set(p)
	return s
}

// Profile ICC profile to embed
func (s *TiffSave) Profile(profile string) *TiffSave {
	s.params.Profile.Set(profile)
	return s
}

// Bitdepth writes 1, 2, 4 or 8 bit images
func (s *TiffSave) Bitdepth(depth int) *TiffSave {
	s.params.Bitdepth.Set(depth)
	return s
}

// Miniswhite writes 1-bit images as white on black
func (s *TiffSave) Miniswhite(miniswhite bool) *TiffSave {
	s.params.Miniswhite.Set(miniswhite)
	return s
}

// Resunit sets the resolution unit
func (s *TiffSave) Resunit(unit TiffResunit) *TiffSave {
	s.params.Resunit.Set(unit)
	return s
}

// Resolution sets horizontal and vertical resolution in pixels per millimetre
func (s *TiffSave) Resolution(xres, yres float64) *TiffSave {
	s.params.Xres.Set(xres)
	s.params.Yres.Set(yres)
	return s
}

// Xres sets horizontal resolution in pixels per millimetre
func (s *TiffSave) Xres(xres float64) *TiffSave {
	s.params.Xres.Set(xres)
	return s
}

// Yres sets vertical resolution in pixels per millimetre
func (s *TiffSave) Yres(yres float64) *TiffSave {
	s.params.Yres.Set(yres)
	return s
}

// Bigtiff writes a BigTiff
func (s *TiffSave) Bigtiff(bigtiff bool) *TiffSave {
	s.params.Bigtiff.Set(bigtiff)
	return s
}

// Properties writes an IMAGEDESCRIPTION tag with image properties
func (s *TiffSave) Properties(properties bool) *TiffSave {
	s.params.Properties.Set(properties)
	return s
}

// RegionShrink sets how pyramid layers are shrunk
func (s *TiffSave) RegionShrink(r RegionShrink) *TiffSave {
	s.params.RegionShrink.Set(r)
	return s
}

// Depth sets pyramid depth
func (s *TiffSave) Depth(d DzDepth) *TiffSave {
	s.params.Depth.Set(d)
	return s
}

// Level sets zstd or deflate compression level
func (s *TiffSave) Level(level int) *TiffSave {
	s.params.Level.Set(level)
	return s
}

// Lossless enables webp lossless compression
func (s *TiffSave) Lossless(lossless bool) *TiffSave {
	s.params.Lossless.Set(lossless)
	return s
}

// Subifd writes pyramid layers as sub-IFDs
func (s *TiffSave) Subifd(subifd bool) *TiffSave {
	s.params.Subifd.Set(subifd)
	return s
}

// Params returns a copy of the configured options
func (s *TiffSave) Params() TiffSaveParams {
	return s.params
}

// Tail returns the option tail the current configuration encodes to
func (s *TiffSave) Tail() CallTail {
	p := s.params
	return p.tail()
}

// Save validates and writes the image. The caller owns the returned File.
func (s *TiffSave) Save() (*File, error) {
	p := s.params
	dir := s.tempDir
	return s.save(s.in, p.validate, func() (*File, error) {
		return newTempFile(dir, "vipsop-*.tif")
	}, p.tail)
}
