package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStorage(t *testing.T) (*LocalStorage, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	s, err := NewLocalStorageFs(fsys, "/uploads")
	require.NoError(t, err)
	return s, fsys
}

func TestValidateKey(t *testing.T) {
	valid := []string{"1712345678901_sample.mp4", "a", "name with spaces.mov", "ünïcode.mkv"}
	for _, k := range valid {
		assert.NoError(t, ValidateKey(k), k)
	}

	invalid := []string{"", ".", "..", "../etc/passwd", "a/b", `a\b`, "tab\tname", "nul\x00"}
	for _, k := range invalid {
		assert.ErrorIs(t, ValidateKey(k), ErrInvalidKey, "%q", k)
	}
}

func TestLocalStorage_CreateOpenRoundTrip(t *testing.T) {
	s, _ := newMemStorage(t)
	ctx := context.Background()

	n, err := s.Create(ctx, "1_clip.mp4", strings.NewReader("frame-data"), -1, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	rc, obj, err := s.Open(ctx, "1_clip.mp4")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "frame-data", string(data))
	assert.Equal(t, "1_clip.mp4", obj.Key)
	assert.Equal(t, int64(10), obj.Size)
}

func TestLocalStorage_CreateIsExclusive(t *testing.T) {
	s, _ := newMemStorage(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "1_a.bin", strings.NewReader("first"), -1, "")
	require.NoError(t, err)

	_, err = s.Create(ctx, "1_a.bin", strings.NewReader("second"), -1, "")
	assert.ErrorIs(t, err, ErrExists)

	rc, _, err := s.Open(ctx, "1_a.bin")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "first", string(data), "existing artifact must stay untouched")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLocalStorage_CreateFailureLeavesNothing(t *testing.T) {
	s, fsys := newMemStorage(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "1_broken.bin", io.MultiReader(bytes.NewReader([]byte("partial")), failingReader{}), -1, "")
	require.Error(t, err)

	exists, err := afero.Exists(fsys, filepath.Join("/uploads", "1_broken.bin"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_CreateRejectsInvalidKey(t *testing.T) {
	s, _ := newMemStorage(t)

	_, err := s.Create(context.Background(), "../escape", strings.NewReader("x"), -1, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	s, fsys := newMemStorage(t)
	ctx := context.Background()
	require.NoError(t, fsys.MkdirAll("/uploads/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/secret.txt", []byte("s"), 0o644))

	for _, key := range []string{"does-not-exist", "subdir", "../secret.txt", ""} {
		_, _, err := s.Open(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, "%q", key)
	}
}

func TestLocalStorage_DeleteAndList(t *testing.T) {
	s, fsys := newMemStorage(t)
	ctx := context.Background()

	for _, k := range []string{"2_b.mp4", "1_a.mp4"} {
		_, err := s.Create(ctx, k, strings.NewReader(k), -1, "")
		require.NoError(t, err)
	}
	require.NoError(t, fsys.MkdirAll("/uploads/nested", 0o755))

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "1_a.mp4", objects[0].Key)
	assert.Equal(t, "2_b.mp4", objects[1].Key)

	require.NoError(t, s.Delete(ctx, "1_a.mp4"))
	require.NoError(t, s.Delete(ctx, "1_a.mp4"), "deleting twice is not an error")

	_, err = s.Stat(ctx, "1_a.mp4")
	assert.ErrorIs(t, err, ErrNotFound)

	objects, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestLocalStorage_CreateHonoursCancellation(t *testing.T) {
	s, fsys := newMemStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, "1_late.bin", strings.NewReader("data"), -1, "")
	assert.ErrorIs(t, err, context.Canceled)

	exists, _ := afero.Exists(fsys, "/uploads/1_late.bin")
	assert.False(t, exists)
}
