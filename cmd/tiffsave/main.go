package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cshum/vipsop/vips"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	if err := run(os.Args[1:], os.Stdout, nil); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Fatal("tiffsave", zap.Error(err))
	}
}

// run converts -in to a tiled TIFF at -out. lib nil binds the process-wide libvips.
func run(args []string, w io.Writer, lib vips.Library) (err error) {
	var (
		fs = flag.NewFlagSet("tiffsave", flag.ContinueOnError)

		in          = fs.String("in", "", "Input image path")
		out         = fs.String("out", "out.tif", "Output TIFF path")
		libraryPath = fs.String("vips-library-path", "", "Path to the libvips shared library")
		tempDir     = fs.String("temp-dir", "", "Directory for the intermediate TIFF")
		quality     = fs.Int("quality", 0, "JPEG quality for compressed tiles. 0 for libvips default")
		compression = fs.String("compression", "", "Compression e.g. none, jpeg, deflate, lzw, webp")
		predictor   = fs.String("predictor", "", "Compression predictor none, horizontal or float")
		tileSize    = fs.Int("tile-size", 256, "Tile width and height, a multiple of 128. 0 for strips")
		pyramid     = fs.Bool("pyramid", true, "Write a pyramid of downsized layers")
		bigtiff     = fs.Bool("bigtiff", false, "Write a BigTIFF")
		verify      = fs.Bool("verify", true, "Decode the output TIFF header and report its size")
	)
	if err = ff.Parse(fs, args, ff.WithEnvVarPrefix("TIFFSAVE")); err != nil {
		return
	}
	if *in == "" {
		return errors.New("tiffsave: -in is required")
	}
	if lib == nil {
		if lib, err = vips.Bind(&vips.Config{LibraryPath: *libraryPath}); err != nil {
			return
		}
		defer vips.Shutdown()
	}

	img, err := vips.LoadImageFromFile(lib, *in, nil)
	if err != nil {
		return
	}
	defer img.Close()

	op := vips.NewTiffSave(img).TempDir(*tempDir)
	if *quality > 0 {
		op.Quality(*quality)
	}
	if *compression != "" {
		c, err := vips.ParseEnum[vips.TiffCompression](*compression)
		if err != nil {
			return err
		}
		op.Compression(c)
	}
	if *predictor != "" {
		p, err := vips.ParseEnum[vips.TiffPredictor](*predictor)
		if err != nil {
			return err
		}
		op.Predictor(p)
	}
	if *tileSize > 0 {
		op.Tile(true).TileSize(*tileSize, *tileSize)
	}
	if *pyramid {
		op.Pyramid(true)
	}
	if *bigtiff {
		op.Bigtiff(true)
	}
	file, err := op.Save()
	if err != nil {
		return
	}
	defer func() {
		_ = file.Remove()
	}()

	size, err := copyFile(file, *out)
	if err != nil {
		return
	}
	if !*verify {
		_, err = fmt.Fprintf(w, "%s %d bytes\n", *out, size)
		return
	}
	f, err := os.Open(*out)
	if err != nil {
		return
	}
	defer func() {
		_ = f.Close()
	}()
	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return
	}
	_, err = fmt.Fprintf(w, "%s %d bytes %dx%d\n", *out, size, cfg.Width, cfg.Height)
	return
}

func copyFile(file *vips.File, dst string) (int64, error) {
	r, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = r.Close()
	}()
	w, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return n, err
	}
	return n, w.Close()
}
