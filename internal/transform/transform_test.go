package transform

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, Resolution2040p, s.Resolution)
	assert.Equal(t, 75, s.Sharpening)
	assert.True(t, s.AIUpscaling && s.NoiseReduction && s.ColorEnhancement &&
		s.MotionStabilization && s.AudioEnhancement && s.HDRProcessing)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"4K", func(s *Settings) { s.Resolution = Resolution4K }, false},
		{"sharpening min", func(s *Settings) { s.Sharpening = 0 }, false},
		{"sharpening max", func(s *Settings) { s.Sharpening = 100 }, false},
		{"sharpening above", func(s *Settings) { s.Sharpening = 101 }, true},
		{"sharpening below", func(s *Settings) { s.Sharpening = -1 }, true},
		{"unknown resolution", func(s *Settings) { s.Resolution = "8K" }, true},
		{"empty resolution", func(s *Settings) { s.Resolution = "" }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := DefaultSettings()
			c.mutate(&s)
			err := s.Validate()
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	s, err = ParseSettings(`{"resolution":"1080p","sharpening":10,"hdrProcessing":false}`)
	require.NoError(t, err)
	assert.Equal(t, Resolution1080p, s.Resolution)
	assert.Equal(t, 10, s.Sharpening)
	assert.False(t, s.HDRProcessing)
	assert.True(t, s.NoiseReduction, "omitted fields keep defaults")

	_, err = ParseSettings(`{"resolution":`)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = ParseSettings(`{"sharpening":250}`)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolution: 1440p\nsharpening: 40\naudioEnhancement: false\n"), 0o644))

	s, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, Resolution1440p, s.Resolution)
	assert.Equal(t, 40, s.Sharpening)
	assert.False(t, s.AudioEnhancement)
	assert.True(t, s.AIUpscaling)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("resolution: 16K\n"), 0o644))
	_, err = LoadSettingsFile(bad)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = LoadSettingsFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIdentityCopiesBytes(t *testing.T) {
	var out bytes.Buffer
	payload := strings.Repeat("\x00\x01video", 1024)

	err := Identity{}.Transform(context.Background(), &out, strings.NewReader(payload), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, payload, out.String())
	assert.Equal(t, "identity", Identity{}.Name())
}

func TestIdentityHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Identity{}.Transform(ctx, &out, strings.NewReader("x"), DefaultSettings())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}
