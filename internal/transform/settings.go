// Package transform holds the enhancement settings value object and the
// pluggable strategy that turns an uploaded artifact into its enhanced form.
package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Resolution is a target output resolution.
type Resolution string

const (
	Resolution1080p Resolution = "1080p"
	Resolution1440p Resolution = "1440p"
	Resolution2040p Resolution = "2040p"
	Resolution4K    Resolution = "4K"
)

// Resolutions lists the accepted targets in display order.
var Resolutions = []Resolution{Resolution1080p, Resolution1440p, Resolution2040p, Resolution4K}

// ErrInvalidSettings is returned for settings outside the accepted ranges.
var ErrInvalidSettings = errors.New("invalid enhancement settings")

// Settings selects what an enhancement run should do.
type Settings struct {
	Resolution          Resolution `json:"resolution" yaml:"resolution" example:"2040p"`
	AIUpscaling         bool       `json:"aiUpscaling" yaml:"aiUpscaling"`
	NoiseReduction      bool       `json:"noiseReduction" yaml:"noiseReduction"`
	Sharpening          int        `json:"sharpening" yaml:"sharpening" example:"75"`
	ColorEnhancement    bool       `json:"colorEnhancement" yaml:"colorEnhancement"`
	MotionStabilization bool       `json:"motionStabilization" yaml:"motionStabilization"`
	AudioEnhancement    bool       `json:"audioEnhancement" yaml:"audioEnhancement"`
	HDRProcessing       bool       `json:"hdrProcessing" yaml:"hdrProcessing"`
}

// DefaultSettings returns the recommended settings: 2040p, every toggle on,
// sharpening at 75.
func DefaultSettings() Settings {
	return Settings{
		Resolution:          Resolution2040p,
		AIUpscaling:         true,
		NoiseReduction:      true,
		Sharpening:          75,
		ColorEnhancement:    true,
		MotionStabilization: true,
		AudioEnhancement:    true,
		HDRProcessing:       true,
	}
}

// Validate checks the resolution against Resolutions and the sharpening
// level against 0..100.
func (s Settings) Validate() error {
	if !ValidResolution(s.Resolution) {
		return fmt.Errorf("%w: unknown resolution %q", ErrInvalidSettings, s.Resolution)
	}
	if s.Sharpening < 0 || s.Sharpening > 100 {
		return fmt.Errorf("%w: sharpening %d out of range 0-100", ErrInvalidSettings, s.Sharpening)
	}
	return nil
}

// ValidResolution reports whether r is one of Resolutions.
func ValidResolution(r Resolution) bool {
	for _, v := range Resolutions {
		if v == r {
			return true
		}
	}
	return false
}

// ParseSettings decodes a JSON settings document on top of DefaultSettings,
// so omitted fields keep their defaults. An empty document yields the defaults.
func ParseSettings(raw string) (Settings, error) {
	s := DefaultSettings()
	if raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettingsFile reads a YAML settings file on top of DefaultSettings.
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
