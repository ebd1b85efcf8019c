package vipsop

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/cshum/vipsop/vips"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Version vipsop version
const Version = "0.1.0"

// Storage saves results under a key
type Storage interface {
	Put(ctx context.Context, key string, blob *Blob) error
}

// App libvips conversion HTTP handler
type App struct {
	Logger             *zap.Logger
	Debug              bool
	LibraryPath        string
	Concurrency        int
	MaxCacheFiles      int
	MaxCacheMem        int
	MaxCacheSize       int
	Observer           vips.CallObserver
	ProcessConcurrency int64
	RequestTimeout     time.Duration
	SaveTimeout        time.Duration
	MaxUploadSize      int64
	TempDir            string
	Storages           []Storage
	DisableErrorBody   bool

	lib  vips.Library
	g    singleflight.Group
	sema *semaphore.Weighted
}

// New creates App
func New(options ...Option) *App {
	app := &App{
		Logger:         zap.NewNop(),
		Concurrency:    -1,
		MaxCacheFiles:  -1,
		MaxCacheMem:    -1,
		MaxCacheSize:   -1,
		RequestTimeout: time.Second * 30,
		SaveTimeout:    time.Second * 20,
		MaxUploadSize:  32 << 20,
	}
	for _, option := range options {
		option(app)
	}
	if app.lib != nil {
		app.lib = vips.Observe(app.lib, app.Observer)
	}
	if app.ProcessConcurrency > 0 {
		app.sema = semaphore.NewWeighted(app.ProcessConcurrency)
	}
	if app.Debug {
		app.debugLog()
	}
	return app
}

func (app *App) library() (vips.Library, error) {
	if app.lib != nil {
		return app.lib, nil
	}
	return vips.Bind(&vips.Config{
		LibraryPath:      app.LibraryPath,
		ConcurrencyLevel: app.Concurrency,
		MaxCacheFiles:    app.MaxCacheFiles,
		MaxCacheMem:      app.MaxCacheMem,
		MaxCacheSize:     app.MaxCacheSize,
		Observer:         app.Observer,
	})
}

// Startup binds libvips. A LinkageError is fatal.
func (app *App) Startup(_ context.Context) error {
	if app.Debug {
		vips.SetLogging(func(domain string, level vips.LogLevel, msg string) {
			switch level {
			case vips.LogLevelDebug:
				app.Logger.Debug(domain, zap.String("log", msg))
			case vips.LogLevelMessage, vips.LogLevelInfo:
				app.Logger.Info(domain, zap.String("log", msg))
			case vips.LogLevelWarning, vips.LogLevelCritical, vips.LogLevelError:
				app.Logger.Warn(domain, zap.String("log", msg))
			}
		}, vips.LogLevelDebug)
	} else {
		vips.SetLogging(func(domain string, level vips.LogLevel, msg string) {
			app.Logger.Warn(domain, zap.String("log", msg))
		}, vips.LogLevelError)
	}
	lib, err := app.library()
	if err != nil {
		return err
	}
	app.Logger.Info("vips", zap.String("version", lib.Version()))
	return nil
}

// Shutdown releases the process-wide libvips binding
func (app *App) Shutdown(_ context.Context) error {
	if app.lib == nil {
		vips.Shutdown()
	}
	return nil
}

// ServeHTTP implements http.Handler for POST /{operation}?options
func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && (r.URL.Path == "/" || r.URL.Path == "") {
		resJSON(w, map[string]interface{}{
			"vipsop": map[string]interface{}{
				"version":    Version,
				"operations": Operations(),
			},
		}, http.StatusOK)
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		app.writeError(w, ErrMethodNotAllowed)
		return
	}
	p, err := ParseParams(r.URL.Path, r.URL.Query())
	if err != nil {
		app.writeError(w, err)
		return
	}
	body := r.Body
	if app.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)
	}
	buf, err := io.ReadAll(body)
	if err != nil {
		app.writeError(w, err)
		return
	}
	blob, err := app.Do(r.Context(), NewBlobFromBytes(buf), p)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		app.writeError(w, err)
		return
	}
	reader, size, err := blob.NewReader()
	if err != nil {
		app.writeError(w, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()
	w.Header().Set("Content-Type", blob.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if p.Operation == OpDzSave {
		w.Header().Set("Content-Disposition", `attachment; filename="image`+dzContainer(p).Suffix()+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (app *App) writeError(w http.ResponseWriter, err error) {
	e := WrapError(err)
	if e.Code >= http.StatusInternalServerError {
		app.Logger.Warn("request", zap.Error(err))
	} else if app.Debug {
		app.Logger.Debug("request", zap.Error(err))
	}
	if app.DisableErrorBody {
		w.WriteHeader(e.Code)
		return
	}
	resJSON(w, e, e.Code)
}

// Do runs the conversion described by p over blob
func (app *App) Do(ctx context.Context, blob *Blob, p Params) (*Blob, error) {
	if app.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.RequestTimeout)
		defer cancel()
	}
	if p.Key == "" {
		return app.do(ctx, blob, p)
	}
	key, err := flightKey(blob, p)
	if err != nil {
		return nil, err
	}
	return app.suppress(ctx, key, func(ctx context.Context) (*Blob, error) {
		return app.do(ctx, blob, p)
	})
}

// flightKey identifies a conversion by operation, options and input digest
func flightKey(blob *Blob, p Params) (string, error) {
	if isEmpty(blob) {
		return "", ErrEmptyBody
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return p.Operation + "?" + p.Query().Encode() + "#" + hex.EncodeToString(sum[:]), nil
}

func (app *App) do(ctx context.Context, blob *Blob, p Params) (*Blob, error) {
	if isEmpty(blob) {
		return nil, ErrEmptyBody
	}
	lib, err := app.library()
	if err != nil {
		return nil, err
	}
	if app.sema != nil {
		if err := app.sema.Acquire(ctx, 1); err != nil {
			app.Logger.Debug("acquire", zap.Error(err))
			return nil, err
		}
		defer app.sema.Release(1)
	}
	out, err := app.process(lib, blob, p)
	if err != nil {
		app.Logger.Warn("process", zap.Any("params", p), zap.Error(err))
		return nil, err
	}
	if app.Debug {
		app.Logger.Debug("processed", zap.Any("params", p), zap.Int("size", out.Size()))
	}
	if p.Key != "" && len(app.Storages) > 0 {
		app.save(ctx, p.Key, out)
	}
	return out, nil
}

func (app *App) process(lib vips.Library, blob *Blob, p Params) (*Blob, error) {
	op, ok := saveOperations[p.Operation]
	if !ok {
		return nil, ErrUnsupportedOperation
	}
	var images []*vips.Image
	defer func() {
		for _, img := range images {
			img.Close()
		}
	}()
	img, err := app.load(lib, blob, p)
	if err != nil {
		return nil, err
	}
	images = append(images, img)

	if p.Rotate != 0 {
		angle, err := vips.AngleFromDegrees(p.Rotate)
		if err != nil {
			return nil, &vips.ConfigError{Op: vips.EntryRot, Field: "angle", Reason: err.Error()}
		}
		if img, err = vips.NewRotate(img, angle).Execute(); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if p.Width != 0 || p.Height != 0 || p.Crop != "" {
		thumbnail := vips.NewThumbnail(img, p.Width)
		if p.Height != 0 {
			thumbnail.Height(p.Height)
		}
		if p.Crop != "" {
			crop, err := vips.ParseEnum[vips.Interesting](p.Crop)
			if err != nil {
				return nil, &vips.ConfigError{Op: vips.EntryThumbnailImage, Field: "crop", Reason: err.Error()}
			}
			thumbnail.Crop(crop)
		}
		if img, err = thumbnail.Execute(); err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	saver, err := op.build(img, app.TempDir, p.Options)
	if err != nil {
		return nil, err
	}
	file, err := saver.Save()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Remove(); err != nil {
			app.Logger.Warn("remove", zap.String("path", file.Path()), zap.Error(err))
		}
	}()
	files, err := file.Files()
	if err != nil {
		return nil, err
	}
	if len(files) != 1 {
		return nil, fmt.Errorf("%s produced %d files", p.Operation, len(files))
	}
	buf, err := os.ReadFile(files[0])
	if err != nil {
		return nil, err
	}
	return NewBlobFromBytesWithContentType(buf, op.contentType), nil
}

// load reads blob into an owned image. Non file blobs are spooled to a temp file.
func (app *App) load(lib vips.Library, blob *Blob, p Params) (*vips.Image, error) {
	if blob.IsBMP() {
		reader, _, err := blob.NewReader()
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return vips.LoadImageFromBMP(lib, reader)
	}
	params := vips.NewLoadParams()
	if p.Access != "" {
		access, err := vips.ParseEnum[vips.Access](p.Access)
		if err != nil {
			return nil, &vips.ConfigError{Op: vips.EntryNewFromFile, Field: "access", Reason: err.Error()}
		}
		params.Access.Set(access)
	} else {
		params.Access.Set(vips.AccessRandom)
	}
	if path := blob.FilePath(); path != "" {
		return vips.LoadImageFromFile(lib, path, params)
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(app.TempDir, "vipsop-in-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	// pixels must be read before the spool file goes away
	params.Memory.Set(true)
	return vips.LoadImageFromFile(lib, f.Name(), params)
}

func (app *App) save(ctx context.Context, key string, blob *Blob) {
	if app.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.SaveTimeout)
		defer cancel()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, storage := range app.Storages {
		storage := storage
		g.Go(func() error {
			if err := storage.Put(ctx, key, blob); err != nil {
				app.Logger.Warn("save", zap.String("key", key), zap.String("storage", getType(storage)), zap.Error(err))
				return err
			}
			if app.Debug {
				app.Logger.Debug("saved", zap.String("key", key), zap.String("storage", getType(storage)))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (app *App) suppress(
	ctx context.Context, key string, fn func(ctx context.Context) (*Blob, error),
) (*Blob, error) {
	if app.Debug {
		app.Logger.Debug("suppress", zap.String("key", key))
	}
	ch := app.g.DoChan(key, func() (interface{}, error) {
		v, err := fn(ctx)
		if errors.Is(err, context.Canceled) {
			app.g.Forget(key)
		}
		return v, err
	})
	select {
	case res := <-ch:
		if blob, ok := res.Val.(*Blob); ok && blob != nil {
			return blob, res.Err
		}
		return nil, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (app *App) debugLog() {
	var storages []string
	for _, v := range app.Storages {
		storages = append(storages, getType(v))
	}
	app.Logger.Debug("vipsop",
		zap.String("version", Version),
		zap.String("library_path", app.LibraryPath),
		zap.Int("vips_concurrency", app.Concurrency),
		zap.Int64("process_concurrency", app.ProcessConcurrency),
		zap.Duration("request_timeout", app.RequestTimeout),
		zap.Duration("save_timeout", app.SaveTimeout),
		zap.Int64("max_upload_size", app.MaxUploadSize),
		zap.Strings("storages", storages),
	)
}

func resJSON(w http.ResponseWriter, v interface{}, code int) {
	buf, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(code)
	_, _ = w.Write(buf)
}

func getType(v interface{}) string {
	if t := reflect.TypeOf(v); t.Kind() == reflect.Ptr {
		return t.Elem().Name()
	} else {
		return t.Name()
	}
}
