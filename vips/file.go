package vips

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// File an owned temporary output artifact.
// It is a single file, or a directory when the operation writes many files.
type File struct {
	lock    sync.Mutex
	path    string
	root    string
	removed bool
}

func newTempFile(dir, pattern string) (*File, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, err
	}
	return &File{path: f.Name()}, nil
}

func newTempDir(dir, pattern, basename string) (*File, error) {
	root, err := os.MkdirTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return &File{path: filepath.Join(root, basename), root: root}, nil
}

// Path returns the name the artifact was written under
func (f *File) Path() string {
	return f.path
}

// Dir returns the directory owned by the artifact, empty for single files
func (f *File) Dir() string {
	return f.root
}

// Open opens the artifact file for reading
func (f *File) Open() (*os.File, error) {
	return f.OpenFile(f.path)
}

// OpenFile opens a file produced by the operation, by absolute path as returned from Files
func (f *File) OpenFile(name string) (*os.File, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.removed {
		return nil, ErrFileRemoved
	}
	return os.Open(name)
}

// Files lists every regular file the operation produced
func (f *File) Files() ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.removed {
		return nil, ErrFileRemoved
	}
	if f.root == "" {
		return []string{f.path}, nil
	}
	var files []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Remove deletes the artifact. Only the first call removes; later calls return ErrFileRemoved.
func (f *File) Remove() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.removed {
		return ErrFileRemoved
	}
	f.removed = true
	if f.root != "" {
		return os.RemoveAll(f.root)
	}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
