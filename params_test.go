package vipsop

import (
	"net/url"
	"testing"

	"github.com/cshum/vipsop/vips"
	"github.com/cshum/vipsop/vips/vipstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	q, err := url.ParseQuery("key=/foo/bar.tif&access=sequential&rotate=180&thumbnail=300&thumbnail_height=200&crop=entropy&Q=80&tile")
	require.NoError(t, err)
	p, err := ParseParams("/tiffsave", q)
	require.NoError(t, err)
	assert.Equal(t, Params{
		Operation: OpTiffSave,
		Key:       "foo/bar.tif",
		Access:    "sequential",
		Rotate:    180,
		Width:     300,
		Height:    200,
		Crop:      "entropy",
		Options:   map[string]string{"Q": "80", "tile": ""},
	}, p)
	assert.Equal(t, url.Values{
		"key":              {"foo/bar.tif"},
		"access":           {"sequential"},
		"rotate":           {"180"},
		"thumbnail":        {"300"},
		"thumbnail_height": {"200"},
		"crop":             {"entropy"},
		"Q":                {"80"},
		"tile":             {""},
	}, p.Query())

	_, err = ParseParams("/gifsave", nil)
	assert.Equal(t, ErrUnsupportedOperation, err)

	for _, query := range []string{"rotate=x", "thumbnail=big", "thumbnail_height=1.5"} {
		q, _ := url.ParseQuery(query)
		_, err = ParseParams("tiffsave", q)
		var cfgErr *vips.ConfigError
		assert.ErrorAs(t, err, &cfgErr, query)
	}
}

func TestOperations(t *testing.T) {
	assert.Equal(t, []string{OpDzSave, OpJpegSave, OpPngSave, OpTiffSave, OpWebpSave}, Operations())
}

func TestSaveOptions(t *testing.T) {
	lib := vipstest.New()
	img, err := vips.LoadImageFromMemory(lib, make([]byte, 12), 2, 2, 3)
	require.NoError(t, err)
	defer img.Close()

	tests := []struct {
		op      string
		options map[string]string
		names   []string
		err     string
	}{
		{
			op: OpTiffSave,
			options: map[string]string{
				"xres": "2.5", "yres": "3", "compression": "jpeg", "bigtiff": "false",
				"resunit": "inch", "region_shrink": "mode", "depth": "onetile",
			},
			names: []string{"compression", "resunit", "xres", "yres", "bigtiff", "region_shrink", "depth"},
		},
		{op: OpTiffSave, options: map[string]string{"Q": "high"}, err: "Q"},
		{op: OpTiffSave, options: map[string]string{"tile": "maybe"}, err: "tile"},
		{op: OpTiffSave, options: map[string]string{"predictor": "diagonal"}, err: "predictor"},
		{
			op:      OpDzSave,
			options: map[string]string{"layout": "google", "overlap": "1", "tile_size": "510"},
			names:   []string{"layout", "overlap", "tile_size", "container"},
		},
		{
			op:      OpDzSave,
			options: map[string]string{"container": "szi"},
			names:   []string{"container"},
		},
		{op: OpDzSave, options: map[string]string{"container": "fs"}, err: "container"},
		{
			op:      OpJpegSave,
			options: map[string]string{"subsample_mode": "off", "quant_table": "3", "optimize_scans": ""},
			names:   []string{"subsample_mode", "optimize_scans", "quant_table"},
		},
		{
			op:      OpPngSave,
			options: map[string]string{"dither": "0.5", "bitdepth": "8"},
			names:   []string{"dither", "bitdepth"},
		},
		{op: OpPngSave, options: map[string]string{"dither": "lots"}, err: "dither"},
		{
			op:      OpWebpSave,
			options: map[string]string{"kmin": "2", "kmax": "5", "preset": "photo"},
			names:   []string{"preset", "kmin", "kmax"},
		},
		{op: OpWebpSave, options: map[string]string{"tile": "1"}, err: "unknown option"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			s, err := saveOperations[tt.op].build(img, t.TempDir(), tt.options)
			if tt.err != "" {
				require.Error(t, err)
				var cfgErr *vips.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, vips.StateConfiguring, s.State())
			var names []string
			for _, p := range s.Tail().Pairs() {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}
