package vips_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cshum/vipsop/vips"
	"github.com/cshum/vipsop/vips/vipstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairNames(tail vips.CallTail) []string {
	var names []string
	for _, p := range tail.Pairs() {
		names = append(names, p.Name)
	}
	return names
}

func assertUniqueNames(t *testing.T, tail vips.CallTail) {
	seen := map[string]bool{}
	for _, name := range pairNames(tail) {
		assert.False(t, seen[name], "duplicate option %s", name)
		seen[name] = true
	}
}

func TestDzSave(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewDzSave(img).
		TempDir(t.TempDir()).
		Layout(vips.DzLayoutIIIF).
		Suffix(".jpg[Q=90]").
		Overlap(0).
		TileSize(256).
		Centre(true).
		Depth(vips.DzDepthOneTile).
		Angle(vips.AngleD90).
		Container(vips.DzContainerZip).
		Compression(6).
		RegionShrink(vips.RegionShrinkMax).
		SkipBlanks(-1).
		ID("https://example.com/iiif").
		Quality(85)
	tail := op.Tail()
	assert.Equal(t, []string{
		"layout", "suffix", "overlap", "tile_size", "centre", "depth", "angle",
		"container", "compression", "region_shrink", "skip_blanks", "id", "Q",
	}, pairNames(tail))
	assertUniqueNames(t, tail)
	assert.Equal(t, vips.Int(3), tail.Pairs()[0].Value)
	assert.Equal(t, vips.Int(1), tail.Pairs()[7].Value)

	file, err := op.Save()
	require.NoError(t, err)
	assert.Equal(t, "image", filepath.Base(file.Path()))
	assert.Equal(t, filepath.Dir(file.Path()), file.Dir())
	files, err := file.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{file.Path() + ".zip"}, files)

	require.NoError(t, file.Remove())
	_, err = os.Stat(file.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestDzSaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		op    func(s *vips.DzSave) *vips.DzSave
		field string
	}{
		{"tile size", func(s *vips.DzSave) *vips.DzSave { return s.TileSize(0) }, "tile_size"},
		{"tile size max", func(s *vips.DzSave) *vips.DzSave { return s.TileSize(8193) }, "tile_size"},
		{"overlap", func(s *vips.DzSave) *vips.DzSave { return s.Overlap(-1) }, "overlap"},
		{"overlap tile", func(s *vips.DzSave) *vips.DzSave { return s.TileSize(64).Overlap(64) }, "overlap"},
		{"overlap default tile", func(s *vips.DzSave) *vips.DzSave { return s.Overlap(254) }, "overlap"},
		{"compression", func(s *vips.DzSave) *vips.DzSave { return s.Compression(10) }, "compression"},
		{"container", func(s *vips.DzSave) *vips.DzSave { return s.Container(vips.DzContainerLast) }, "container"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := vipstest.New()
			img := newTestImage(t, lib)
			dir := t.TempDir()
			_, err := tt.op(vips.NewDzSave(img)).TempDir(dir).Save()
			var cfgErr *vips.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Zero(t, lib.CallCount(vips.EntryDzSave))
			entries, _ := os.ReadDir(dir)
			assert.Empty(t, entries)
		})
	}
}

func TestDzSaveCallErrorRemovesDirectory(t *testing.T) {
	lib := vipstest.New()
	lib.Codes[vips.EntryDzSave] = 1
	img := newTestImage(t, lib)
	dir := t.TempDir()
	_, err := vips.NewDzSave(img).TempDir(dir).Save()
	var callErr *vips.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, 1, callErr.Code)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestJpegSave(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewJpegSave(img).
		TempDir(t.TempDir()).
		Quality(85).
		OptimizeCoding(true).
		Interlace(true).
		SubsampleMode(vips.SubsampleOff).
		TrellisQuant(true).
		OvershootDeringing(false).
		OptimizeScans(true).
		QuantTable(3).
		Profile("srgb")
	tail := op.Tail()
	assert.Equal(t, []string{
		"Q", "optimize_coding", "interlace", "subsample_mode", "trellis_quant",
		"overshoot_deringing", "optimize_scans", "quant_table", "profile",
	}, pairNames(tail))
	assert.Equal(t, vips.Int(2), tail.Pairs()[3].Value)
	assertUniqueNames(t, tail)

	file, err := op.Save()
	require.NoError(t, err)
	defer file.Remove()
	assert.Regexp(t, `\.jpg$`, file.Path())

	_, err = vips.NewJpegSave(img).QuantTable(9).Save()
	assert.IsType(t, &vips.ConfigError{}, err)
	_, err = vips.NewJpegSave(img).Quality(0).Save()
	assert.IsType(t, &vips.ConfigError{}, err)
}

func TestPngSave(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewPngSave(img).
		TempDir(t.TempDir()).
		Compression(9).
		Interlace(false).
		Palette(true).
		Quality(60).
		Dither(0.5).
		Bitdepth(8).
		Effort(7).
		Profile("none")
	tail := op.Tail()
	assert.Equal(t, []string{
		"compression", "interlace", "palette", "Q", "dither", "bitdepth", "effort", "profile",
	}, pairNames(tail))
	assert.Equal(t, vips.Double(0.5), tail.Pairs()[4].Value)
	assertUniqueNames(t, tail)

	file, err := op.Save()
	require.NoError(t, err)
	defer file.Remove()
	assert.Regexp(t, `\.png$`, file.Path())

	for _, op := range []*vips.PngSave{
		vips.NewPngSave(img).Compression(10),
		vips.NewPngSave(img).Dither(1.5),
		vips.NewPngSave(img).Bitdepth(12),
		vips.NewPngSave(img).Effort(0),
	} {
		_, err := op.Save()
		assert.IsType(t, &vips.ConfigError{}, err)
	}
	assert.Equal(t, 1, lib.CallCount(vips.EntryPngSave))
}

func TestWebpSave(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewWebpSave(img).
		TempDir(t.TempDir()).
		Quality(75).
		Lossless(false).
		Preset(vips.WebpPresetPhoto).
		SmartSubsample(true).
		NearLossless(false).
		AlphaQuality(90).
		MinSize(true).
		KeyframeRange(3, 10).
		Effort(4).
		Profile("srgb")
	tail := op.Tail()
	assert.Equal(t, []string{
		"Q", "lossless", "preset", "smart_subsample", "near_lossless", "alpha_q",
		"min_size", "kmin", "kmax", "effort", "profile",
	}, pairNames(tail))
	assert.Equal(t, vips.Int(2), tail.Pairs()[2].Value)
	assertUniqueNames(t, tail)

	file, err := op.Save()
	require.NoError(t, err)
	defer file.Remove()
	assert.Regexp(t, `\.webp$`, file.Path())

	_, err = vips.NewWebpSave(img).Effort(7).Save()
	assert.IsType(t, &vips.ConfigError{}, err)
	_, err = vips.NewWebpSave(img).AlphaQuality(101).Save()
	assert.IsType(t, &vips.ConfigError{}, err)
}

func TestRotate(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewRotate(img, vips.AngleD180)
	out, err := op.Execute()
	require.NoError(t, err)
	assert.True(t, out.Owned())
	assert.Equal(t, vips.StateSucceeded, op.State())

	calls := lib.Calls()
	call := calls[len(calls)-1]
	assert.Equal(t, vips.EntryRot, call.Entry)
	require.Len(t, call.Fixed, 3)
	assert.Equal(t, vips.ArgPointer, call.Fixed[0].Type)
	assert.Equal(t, vips.ArgOutImage, call.Fixed[1].Type)
	assert.Equal(t, vips.Int(2), call.Fixed[2])
	assert.Equal(t, vips.CallTail{vips.Terminator}, call.Tail)

	in, _ := img.Handle()
	h, err := out.Handle()
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.NotEqual(t, in, h)

	out.Close()
	assert.Equal(t, []vips.Handle{h}, lib.Released())

	_, err = op.Execute()
	assert.ErrorIs(t, err, vips.ErrExecuted)

	_, err = vips.NewRotate(img, vips.Angle(4)).Execute()
	assert.IsType(t, &vips.ConfigError{}, err)
}

func TestRotateCallError(t *testing.T) {
	lib := vipstest.New()
	lib.Codes[vips.EntryRot] = -1
	img := newTestImage(t, lib)
	out, err := vips.NewRotate(img, vips.AngleD90).Execute()
	assert.Nil(t, out)
	var callErr *vips.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, vips.EntryRot, callErr.Entry)
}

func TestThumbnail(t *testing.T) {
	lib := vipstest.New()
	img := newTestImage(t, lib)
	op := vips.NewThumbnail(img, 200).
		Height(100).
		Size(vips.SizeDown).
		Crop(vips.InterestingAttention).
		NoRotate(true).
		Linear(false).
		ImportProfile("cmyk").
		ExportProfile("srgb")
	assert.Equal(t, []string{
		"height", "size", "crop", "no_rotate", "linear", "import_profile", "export_profile",
	}, pairNames(op.Tail()))
	out, err := op.Execute()
	require.NoError(t, err)
	defer out.Close()

	calls := lib.Calls()
	call := calls[len(calls)-1]
	assert.Equal(t, vips.EntryThumbnailImage, call.Entry)
	assert.Equal(t, vips.Int(200), call.Fixed[2])
	assert.Equal(t, vips.Int(3), call.Tail.Pairs()[2].Value)

	_, err = vips.NewThumbnail(img, 0).Execute()
	assert.IsType(t, &vips.ConfigError{}, err)
	_, err = vips.NewThumbnail(img, 10).Height(0).Execute()
	assert.IsType(t, &vips.ConfigError{}, err)
	assert.Equal(t, 1, lib.CallCount(vips.EntryThumbnailImage))
}

func TestLoadImageFromFile(t *testing.T) {
	lib := vipstest.New()
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0600))

	params := vips.NewLoadParams()
	params.Access.Set(vips.AccessSequential)
	params.Memory.Set(true)
	img, err := vips.LoadImageFromFile(lib, path, params)
	require.NoError(t, err)
	defer img.Close()

	call := lib.Calls()[0]
	assert.Equal(t, vips.EntryNewFromFile, call.Entry)
	assert.Equal(t, vips.String(path), call.Fixed[0])
	assert.Equal(t, vips.CallTail{
		vips.String("access"), vips.Int(1),
		vips.String("memory"), vips.Int(1),
		vips.Terminator,
	}, call.Tail)

	m, err := img.Metadata()
	require.NoError(t, err)
	assert.Equal(t, &vips.ImageMetadata{Width: 64, Height: 48, Bands: 3}, m)

	_, err = vips.LoadImageFromFile(lib, filepath.Join(t.TempDir(), "missing.png"), nil)
	assert.True(t, os.IsNotExist(err))

	lib.FailLoad = true
	lib.Message = "not a known file format"
	_, err = vips.LoadImageFromFile(lib, path, nil)
	var callErr *vips.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, vips.EntryNewFromFile, callErr.Entry)
	assert.Equal(t, -1, callErr.Code)
	assert.Equal(t, "not a known file format", callErr.Message)
}

func TestLoadImageFromMemoryValidation(t *testing.T) {
	lib := vipstest.New()
	_, err := vips.LoadImageFromMemory(lib, make([]byte, 10), 2, 2, 3)
	assert.IsType(t, &vips.ConfigError{}, err)
	_, err = vips.LoadImageFromMemory(lib, nil, 0, 2, 3)
	assert.IsType(t, &vips.ConfigError{}, err)
	assert.Zero(t, lib.CallCount(""))
}
