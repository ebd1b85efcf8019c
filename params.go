package vipsop

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cshum/vipsop/vips"
)

// operation names served under /{operation}
const (
	OpTiffSave = "tiffsave"
	OpDzSave   = "dzsave"
	OpJpegSave = "jpegsave"
	OpPngSave  = "pngsave"
	OpWebpSave = "webpsave"
)

// Params a parsed conversion request
type Params struct {
	Operation string            `json:"operation"`
	Key       string            `json:"key,omitempty"`
	Access    string            `json:"access,omitempty"`
	Rotate    int               `json:"rotate,omitempty"`
	Width     int               `json:"width,omitempty"`
	Height    int               `json:"height,omitempty"`
	Crop      string            `json:"crop,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
}

// reserved query keys, everything else is an operation option
const (
	paramKey       = "key"
	paramAccess    = "access"
	paramRotate    = "rotate"
	paramThumbnail = "thumbnail"
	paramHeight    = "thumbnail_height"
	paramCrop      = "crop"
)

// ParseParams parses the request path and query into Params
func ParseParams(path string, query url.Values) (p Params, err error) {
	p.Operation = strings.Trim(path, "/")
	if _, ok := saveOperations[p.Operation]; !ok {
		return p, ErrUnsupportedOperation
	}
	for name, values := range query {
		var v string
		if len(values) > 0 {
			v = values[0]
		}
		switch name {
		case paramKey:
			p.Key = strings.TrimPrefix(v, "/")
		case paramAccess:
			p.Access = v
		case paramRotate:
			if p.Rotate, err = strconv.Atoi(v); err != nil {
				return p, &vips.ConfigError{Op: vips.EntryRot, Field: "angle", Reason: err.Error()}
			}
		case paramThumbnail:
			if p.Width, err = strconv.Atoi(v); err != nil {
				return p, &vips.ConfigError{Op: vips.EntryThumbnailImage, Field: "width", Reason: err.Error()}
			}
		case paramHeight:
			if p.Height, err = strconv.Atoi(v); err != nil {
				return p, &vips.ConfigError{Op: vips.EntryThumbnailImage, Field: "height", Reason: err.Error()}
			}
		case paramCrop:
			p.Crop = v
		default:
			if p.Options == nil {
				p.Options = map[string]string{}
			}
			p.Options[name] = v
		}
	}
	return p, nil
}

// Query returns the query string form of p
func (p Params) Query() url.Values {
	q := url.Values{}
	if p.Key != "" {
		q.Set(paramKey, p.Key)
	}
	if p.Access != "" {
		q.Set(paramAccess, p.Access)
	}
	if p.Rotate != 0 {
		q.Set(paramRotate, strconv.Itoa(p.Rotate))
	}
	if p.Width != 0 {
		q.Set(paramThumbnail, strconv.Itoa(p.Width))
	}
	if p.Height != 0 {
		q.Set(paramHeight, strconv.Itoa(p.Height))
	}
	if p.Crop != "" {
		q.Set(paramCrop, p.Crop)
	}
	for k, v := range p.Options {
		q.Set(k, v)
	}
	return q
}

// dzContainer returns the requested dzsave container, zip by default
func dzContainer(p Params) vips.DzContainer {
	if c, err := vips.ParseEnum[vips.DzContainer](p.Options["container"]); err == nil {
		return c
	}
	return vips.DzContainerZip
}

// Saver a configured save operation
type Saver interface {
	Save() (*vips.File, error)
	State() vips.State
	Tail() vips.CallTail
}

type saveOperation struct {
	contentType string
	build       func(img *vips.Image, tempDir string, options map[string]string) (Saver, error)
}

var saveOperations = map[string]saveOperation{
	OpTiffSave: {"image/tiff", func(img *vips.Image, dir string, opts map[string]string) (Saver, error) {
		s := vips.NewTiffSave(img).TempDir(dir)
		return s, applyOptions(vips.EntryTiffSave, s, opts, tiffSaveOptions)
	}},
	OpDzSave: {"application/zip", func(img *vips.Image, dir string, opts map[string]string) (Saver, error) {
		s := vips.NewDzSave(img).TempDir(dir)
		if err := applyOptions(vips.EntryDzSave, s, opts, dzSaveOptions); err != nil {
			return nil, err
		}
		// a single file response requires a zip based container
		if c := s.Params().Container; !c.IsSet() {
			s.Container(vips.DzContainerZip)
		} else if c.Get() == vips.DzContainerFS {
			return nil, &vips.ConfigError{Op: vips.EntryDzSave, Field: "container", Reason: "fs cannot be served, use zip or szi"}
		}
		return s, nil
	}},
	OpJpegSave: {"image/jpeg", func(img *vips.Image, dir string, opts map[string]string) (Saver, error) {
		s := vips.NewJpegSave(img).TempDir(dir)
		return s, applyOptions(vips.EntryJpegSave, s, opts, jpegSaveOptions)
	}},
	OpPngSave: {"image/png", func(img *vips.Image, dir string, opts map[string]string) (Saver, error) {
		s := vips.NewPngSave(img).TempDir(dir)
		return s, applyOptions(vips.EntryPngSave, s, opts, pngSaveOptions)
	}},
	OpWebpSave: {"image/webp", func(img *vips.Image, dir string, opts map[string]string) (Saver, error) {
		s := vips.NewWebpSave(img).TempDir(dir)
		return s, applyOptions(vips.EntryWebpSave, s, opts, webpSaveOptions)
	}},
}

// Operations returns the supported operation names
func Operations() []string {
	var ops []string
	for op := range saveOperations {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

type option[S any] func(s S, v string) error

func applyOptions[S any](entry string, s S, opts map[string]string, table map[string]option[S]) error {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		set, ok := table[name]
		if !ok {
			return &vips.ConfigError{Op: entry, Field: name, Reason: "unknown option"}
		}
		if err := set(s, opts[name]); err != nil {
			return &vips.ConfigError{Op: entry, Field: name, Reason: err.Error()}
		}
	}
	return nil
}

func intOption[S any](set func(S, int) S) option[S] {
	return func(s S, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(s, n)
		return nil
	}
}

func floatOption[S any](set func(S, float64) S) option[S] {
	return func(s S, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		set(s, f)
		return nil
	}
}

// boolOption treats a bare key such as ?tile as true
func boolOption[S any](set func(S, bool) S) option[S] {
	return func(s S, v string) error {
		if v == "" {
			set(s, true)
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		set(s, b)
		return nil
	}
}

func stringOption[S any](set func(S, string) S) option[S] {
	return func(s S, v string) error {
		set(s, v)
		return nil
	}
}

func enumOption[S any, E vips.Enum](set func(S, E) S) option[S] {
	return func(s S, v string) error {
		e, err := vips.ParseEnum[E](v)
		if err != nil {
			return err
		}
		set(s, e)
		return nil
	}
}

var tiffSaveOptions = map[string]option[*vips.TiffSave]{
	"Q":             intOption((*vips.TiffSave).Quality),
	"compression":   enumOption((*vips.TiffSave).Compression),
	"tile":          boolOption((*vips.TiffSave).Tile),
	"tile_width":    intOption((*vips.TiffSave).TileWidth),
	"tile_height":   intOption((*vips.TiffSave).TileHeight),
	"pyramid":       boolOption((*vips.TiffSave).Pyramid),
	"predictor":     enumOption((*vips.TiffSave).Predictor),
	"profile":       stringOption((*vips.TiffSave).Profile),
	"bitdepth":      intOption((*vips.TiffSave).Bitdepth),
	"miniswhite":    boolOption((*vips.TiffSave).Miniswhite),
	"resunit":       enumOption((*vips.TiffSave).Resunit),
	"xres":          floatOption((*vips.TiffSave).Xres),
	"yres":          floatOption((*vips.TiffSave).Yres),
	"bigtiff":       boolOption((*vips.TiffSave).Bigtiff),
	"properties":    boolOption((*vips.TiffSave).Properties),
	"region_shrink": enumOption((*vips.TiffSave).RegionShrink),
	"depth":         enumOption((*vips.TiffSave).Depth),
	"level":         intOption((*vips.TiffSave).Level),
	"lossless":      boolOption((*vips.TiffSave).Lossless),
	"subifd":        boolOption((*vips.TiffSave).Subifd),
}

var dzSaveOptions = map[string]option[*vips.DzSave]{
	"layout":        enumOption((*vips.DzSave).Layout),
	"suffix":        stringOption((*vips.DzSave).Suffix),
	"overlap":       intOption((*vips.DzSave).Overlap),
	"tile_size":     intOption((*vips.DzSave).TileSize),
	"centre":        boolOption((*vips.DzSave).Centre),
	"depth":         enumOption((*vips.DzSave).Depth),
	"angle":         enumOption((*vips.DzSave).Angle),
	"container":     enumOption((*vips.DzSave).Container),
	"compression":   intOption((*vips.DzSave).Compression),
	"region_shrink": enumOption((*vips.DzSave).RegionShrink),
	"skip_blanks":   intOption((*vips.DzSave).SkipBlanks),
	"id":            stringOption((*vips.DzSave).ID),
	"Q":             intOption((*vips.DzSave).Quality),
}

var jpegSaveOptions = map[string]option[*vips.JpegSave]{
	"Q":                   intOption((*vips.JpegSave).Quality),
	"optimize_coding":     boolOption((*vips.JpegSave).OptimizeCoding),
	"interlace":           boolOption((*vips.JpegSave).Interlace),
	"subsample_mode":      enumOption((*vips.JpegSave).SubsampleMode),
	"trellis_quant":       boolOption((*vips.JpegSave).TrellisQuant),
	"overshoot_deringing": boolOption((*vips.JpegSave).OvershootDeringing),
	"optimize_scans":      boolOption((*vips.JpegSave).OptimizeScans),
	"quant_table":         intOption((*vips.JpegSave).QuantTable),
	"profile":             stringOption((*vips.JpegSave).Profile),
}

var pngSaveOptions = map[string]option[*vips.PngSave]{
	"compression": intOption((*vips.PngSave).Compression),
	"interlace":   boolOption((*vips.PngSave).Interlace),
	"palette":     boolOption((*vips.PngSave).Palette),
	"Q":           intOption((*vips.PngSave).Quality),
	"dither":      floatOption((*vips.PngSave).Dither),
	"bitdepth":    intOption((*vips.PngSave).Bitdepth),
	"effort":      intOption((*vips.PngSave).Effort),
	"profile":     stringOption((*vips.PngSave).Profile),
}

var webpSaveOptions = map[string]option[*vips.WebpSave]{
	"Q":               intOption((*vips.WebpSave).Quality),
	"lossless":        boolOption((*vips.WebpSave).Lossless),
	"preset":          enumOption((*vips.WebpSave).Preset),
	"smart_subsample": boolOption((*vips.WebpSave).SmartSubsample),
	"near_lossless":   boolOption((*vips.WebpSave).NearLossless),
	"alpha_q":         intOption((*vips.WebpSave).AlphaQuality),
	"min_size":        boolOption((*vips.WebpSave).MinSize),
	"kmin":            intOption((*vips.WebpSave).Kmin),
	"kmax":            intOption((*vips.WebpSave).Kmax),
	"effort":          intOption((*vips.WebpSave).Effort),
	"profile":         stringOption((*vips.WebpSave).Profile),
}
