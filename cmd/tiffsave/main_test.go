package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/cshum/vipsop/vips"
	"github.com/cshum/vipsop/vips/vipstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

// tiffLibrary writes a real TIFF for vips_tiffsave
type tiffLibrary struct {
	*vipstest.Library
}

func (l tiffLibrary) Call(entry string, fixed []vips.Arg, tail vips.CallTail) int {
	code := l.Library.Call(entry, fixed, tail)
	if code != 0 || entry != vips.EntryTiffSave {
		return code
	}
	buf := &bytes.Buffer{}
	if err := tiff.Encode(buf, image.NewGray(image.Rect(0, 0, l.Width, l.Height)), nil); err != nil {
		return -1
	}
	if err := os.WriteFile(fixed[1].Str, buf.Bytes(), 0600); err != nil {
		return -1
	}
	return 0
}

func inputFile(t *testing.T) string {
	in := filepath.Join(t.TempDir(), "in.jpg")
	require.NoError(t, os.WriteFile(in, []byte("\xFF\xD8\xFFjpeg"), 0600))
	return in
}

func TestRun(t *testing.T) {
	lib := vipstest.New()
	out := filepath.Join(t.TempDir(), "out.tif")
	w := &bytes.Buffer{}
	require.NoError(t, run([]string{
		"-in", inputFile(t),
		"-out", out,
		"-temp-dir", t.TempDir(),
		"-quality", "80",
		"-predictor", "horizontal",
	}, w, tiffLibrary{lib}))
	assert.Regexp(t, `out\.tif \d+ bytes 64x48`, w.String())

	require.Equal(t, 1, lib.CallCount(vips.EntryTiffSave))
	var names []string
	var tiffCall vipstest.Call
	for _, call := range lib.Calls() {
		if call.Entry == vips.EntryTiffSave {
			tiffCall = call
		}
	}
	for _, p := range tiffCall.Tail.Pairs() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Q", "tile", "tile_width", "tile_height", "pyramid", "predictor"}, names)
	assert.Len(t, lib.Released(), 1)
}

func TestRun_NoVerify(t *testing.T) {
	lib := vipstest.New()
	out := filepath.Join(t.TempDir(), "out.tif")
	w := &bytes.Buffer{}
	require.NoError(t, run([]string{
		"-in", inputFile(t), "-out", out, "-verify=false", "-pyramid=false", "-tile-size", "0",
	}, w, lib))
	assert.Contains(t, w.String(), "out.tif 22 bytes")
	buf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "vipstest:vips_tiffsave", string(buf))
}

func TestRun_Errors(t *testing.T) {
	lib := vipstest.New()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.tif")

	assert.EqualError(t, run(nil, &bytes.Buffer{}, lib), "tiffsave: -in is required")

	err := run([]string{"-in", inputFile(t), "-out", out, "-tile-size", "100"}, &bytes.Buffer{}, lib)
	var configErr *vips.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, 0, lib.CallCount(vips.EntryTiffSave))

	assert.Error(t, run([]string{"-in", inputFile(t), "-predictor", "sideways"}, &bytes.Buffer{}, lib))

	err = run([]string{"-in", inputFile(t), "-out", out}, &bytes.Buffer{}, lib)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiff")
}
