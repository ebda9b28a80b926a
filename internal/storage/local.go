package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// LocalStorage implements Storage on a single flat directory.
type LocalStorage struct {
	fs  afero.Fs
	dir string
}

// NewLocalStorage returns a LocalStorage rooted at dir on the OS filesystem,
// creating the directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	return NewLocalStorageFs(afero.NewOsFs(), dir)
}

// NewLocalStorageFs is NewLocalStorage on an arbitrary afero filesystem.
func NewLocalStorageFs(fsys afero.Fs, dir string) (*LocalStorage, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &LocalStorage{fs: fsys, dir: dir}, nil
}

// Dir returns the directory artifacts are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Create writes reader to a new file named key. The file is opened with
// O_EXCL so two writers can never share a name.
func (s *LocalStorage) Create(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	path := filepath.Join(s.dir, key)

	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return 0, ErrExists
	}
	if err != nil {
		return 0, fmt.Errorf("create %q: %w", key, err)
	}

	n, err := io.Copy(f, contextReader{ctx: ctx, r: reader})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(path)
		return 0, fmt.Errorf("write %q: %w", key, err)
	}
	return n, nil
}

// Open opens the file named key for reading.
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, *Object, error) {
	obj, err := s.Stat(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", key, err)
	}
	return f, obj, nil
}

// Stat describes the file named key. Directories are reported as not found.
func (s *LocalStorage) Stat(_ context.Context, key string) (*Object, error) {
	if err := ValidateKey(key); err != nil {
		return nil, ErrNotFound
	}
	fi, err := s.fs.Stat(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", key, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, ErrNotFound
	}
	return &Object{Key: key, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Delete removes the file named key.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// List returns the regular files in the directory, sorted by key.
func (s *LocalStorage) List(_ context.Context) ([]Object, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", s.dir, err)
	}
	objects := make([]Object, 0, len(infos))
	for _, fi := range infos {
		if !fi.Mode().IsRegular() || ValidateKey(fi.Name()) != nil {
			continue
		}
		objects = append(objects, Object{Key: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// contextReader stops a copy once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
