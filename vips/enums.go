package vips

import (
	"fmt"
	"strconv"
)

// Enum is a libvips enumeration encoded by declared position.
// Every enumeration ends in an unexported count sentinel.
type Enum interface {
	~int
	fmt.Stringer
	last() int
}

// Ordinal returns the declared position of e, the value passed to libvips
func Ordinal[E Enum](e E) int {
	return int(e)
}

// FromOrdinal decodes a declared position
func FromOrdinal[E Enum](n int) (E, error) {
	var e E
	if n < 0 || n >= e.last() {
		return e, fmt.Errorf("vips: ordinal %d out of range for %T", n, e)
	}
	return E(n), nil
}

// ParseEnum decodes a libvips nick such as "deflate" or "d90"
func ParseEnum[E Enum](nick string) (E, error) {
	var e E
	for i := 0; i < e.last(); i++ {
		if E(i).String() == nick {
			return E(i), nil
		}
	}
	return e, fmt.Errorf("vips: unknown %T %q", e, nick)
}

func nickOf(nicks []string, i int) string {
	if i >= 0 && i < len(nicks) {
		return nicks[i]
	}
	return strconv.Itoa(i)
}

// Angle fixed rotation angle
type Angle int

// Angle enum
const (
	AngleD0 Angle = iota
	AngleD90
	AngleD180
	AngleD270
	AngleLast
)

var angleNicks = []string{"d0", "d90", "d180", "d270"}

func (a Angle) String() string { return nickOf(angleNicks, int(a)) }
func (Angle) last() int        { return int(AngleLast) }

// AngleFromDegrees accepts only multiples of 90 in [0, 270]
func AngleFromDegrees(degrees int) (Angle, error) {
	if degrees < 0 || degrees > 270 || degrees%90 != 0 {
		return AngleD0, fmt.Errorf("vips: unsupported angle %d", degrees)
	}
	return Angle(degrees / 90), nil
}

// Degrees returns the clockwise rotation in degrees
func (a Angle) Degrees() float64 {
	return float64(a) * 90
}

// TiffPredictor tiff compression predictor
type TiffPredictor int

// TiffPredictor enum
const (
	TiffPredictorNone TiffPredictor = iota
	TiffPredictorHorizontal
	TiffPredictorFloat
	TiffPredictorLast
)

var tiffPredictorNicks = []string{"none", "horizontal", "float"}

func (p TiffPredictor) String() string { return nickOf(tiffPredictorNicks, int(p)) }
func (TiffPredictor) last() int        { return int(TiffPredictorLast) }

// TiffResunit tiff resolution unit
type TiffResunit int

// TiffResunit enum
const (
	TiffResunitCm TiffResunit = iota
	TiffResunitInch
	TiffResunitLast
)

var tiffResunitNicks = []string{"cm", "inch"}

func (r TiffResunit) String() string { return nickOf(tiffResunitNicks, int(r)) }
func (TiffResunit) last() int        { return int(TiffResunitLast) }

// TiffCompression tiff compression
type TiffCompression int

// TiffCompression enum
const (
	TiffCompressionNone TiffCompression = iota
	TiffCompressionJpeg
	TiffCompressionDeflate
	TiffCompressionPackbits
	TiffCompressionCcittfax4
	TiffCompressionLzw
	TiffCompressionWebp
	TiffCompressionZstd
	TiffCompressionJp2k
	TiffCompressionLast
)

var tiffCompressionNicks = []string{
	"none", "jpeg", "deflate", "packbits", "ccittfax4", "lzw", "webp", "zstd", "jp2k",
}

func (c TiffCompression) String() string { return nickOf(tiffCompressionNicks, int(c)) }
func (TiffCompression) last() int        { return int(TiffCompressionLast) }

// RegionShrink how to shrink each 2x2 region of pyramid layers
type RegionShrink int

// RegionShrink enum
const (
	RegionShrinkMean RegionShrink = iota
	RegionShrinkMedian
	RegionShrinkMode
	RegionShrinkMax
	RegionShrinkMin
	RegionShrinkNearest
	RegionShrinkLast
)

var regionShrinkNicks = []string{"mean", "median", "mode", "max", "min", "nearest"}

func (r RegionShrink) String() string { return nickOf(regionShrinkNicks, int(r)) }
func (RegionShrink) last() int        { return int(RegionShrinkLast) }

// DzDepth how deep to make the pyramid
type DzDepth int

// DzDepth enum
const (
	DzDepthOnePixel DzDepth = iota
	DzDepthOneTile
	DzDepthOne
	DzDepthLast
)

var dzDepthNicks = []string{"onepixel", "onetile", "one"}

func (d DzDepth) String() string { return nickOf(dzDepthNicks, int(d)) }
func (DzDepth) last() int        { return int(DzDepthLast) }

// DzLayout deep zoom directory layout
type DzLayout int

// DzLayout enum
const (
	DzLayoutDz DzLayout = iota
	DzLayoutZoomify
	DzLayoutGoogle
	DzLayoutIIIF
	DzLayoutIIIF3
	DzLayoutLast
)

var dzLayoutNicks = []string{"dz", "zoomify", "google", "iiif", "iiif3"}

func (l DzLayout) String() string { return nickOf(dzLayoutNicks, int(l)) }
func (DzLayout) last() int        { return int(DzLayoutLast) }

// DzContainer deep zoom output container
type DzContainer int

// DzContainer enum
const (
	DzContainerFS DzContainer = iota
	DzContainerZip
	DzContainerSzi
	DzContainerLast
)

var dzContainerNicks = []string{"fs", "zip", "szi"}

func (c DzContainer) String() string { return nickOf(dzContainerNicks, int(c)) }
func (DzContainer) last() int        { return int(DzContainerLast) }

// Suffix file name extension libvips appends for the container
func (c DzContainer) Suffix() string {
	switch c {
	case DzContainerZip:
		return ".zip"
	case DzContainerSzi:
		return ".szi"
	}
	return ".dzi"
}

// Subsample jpeg chroma subsampling mode
type Subsample int

// Subsample enum
const (
	SubsampleAuto Subsample = iota
	SubsampleOn
	SubsampleOff
	SubsampleLast
)

var subsampleNicks = []string{"auto", "on", "off"}

func (s Subsample) String() string { return nickOf(subsampleNicks, int(s)) }
func (Subsample) last() int        { return int(SubsampleLast) }

// WebpPreset webp encoder preset
type WebpPreset int

// WebpPreset enum
const (
	WebpPresetDefault WebpPreset = iota
	WebpPresetPicture
	WebpPresetPhoto
	WebpPresetDrawing
	WebpPresetIcon
	WebpPresetText
	WebpPresetLast
)

var webpPresetNicks = []string{"default", "picture", "photo", "drawing", "icon", "text"}

func (p WebpPreset) String() string { return nickOf(webpPresetNicks, int(p)) }
func (WebpPreset) last() int        { return int(WebpPresetLast) }

// Size thumbnail size constraint
type Size int

// Size enum
const (
	SizeBoth Size = iota
	SizeUp
	SizeDown
	SizeForce
	SizeLast
)

var sizeNicks = []string{"both", "up", "down", "force"}

func (s Size) String() string { return nickOf(sizeNicks, int(s)) }
func (Size) last() int        { return int(SizeLast) }

// Interesting thumbnail crop strategy
type Interesting int

// Interesting enum
const (
	InterestingNone Interesting = iota
	InterestingCentre
	InterestingEntropy
	InterestingAttention
	InterestingLow
	InterestingHigh
	InterestingAll
	InterestingLast
)

var interestingNicks = []string{"none", "centre", "entropy", "attention", "low", "high", "all"}

func (i Interesting) String() string { return nickOf(interestingNicks, int(i)) }
func (Interesting) last() int        { return int(InterestingLast) }

// Access image load access pattern
type Access int

// Access enum
const (
	AccessRandom Access = iota
	AccessSequential
	AccessSequentialUnbuffered
	AccessLast
)

var accessNicks = []string{"random", "sequential", "sequential-unbuffered"}

func (a Access) String() string { return nickOf(accessNicks, int(a)) }
func (Access) last() int        { return int(AccessLast) }
