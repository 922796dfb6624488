// Package config loads glowview settings from a JSON or TOML file and
// merges command-line overrides into viewer construction parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cogentcore.org/core/colors"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"glowview/internal/camera"
	"glowview/internal/ingest"
	"glowview/internal/scene"
	"glowview/internal/viewer"
)

// Config holds asset, scene, bloom and output settings.
type Config struct {
	// Asset
	Asset     string `json:"asset" toml:"asset"`
	Kind      string `json:"kind" toml:"kind"`
	Output    string `json:"output" toml:"output"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Scene
	Background         string  `json:"background" toml:"background"`
	Transparent        bool    `json:"transparent" toml:"transparent"`
	CameraToObject     float64 `json:"camera_to_object" toml:"camera_to_object"`
	ObjectToBackground float64 `json:"object_to_background" toml:"object_to_background"`
	FOV                float64 `json:"fov" toml:"fov"`
	Emissive           string  `json:"emissive" toml:"emissive"`

	// Bloom. Zero is a meaningful strength or radius, so unset is nil.
	BloomStrength  *float64 `json:"bloom_strength" toml:"bloom_strength"`
	BloomRadius    *float64 `json:"bloom_radius" toml:"bloom_radius"`
	BloomThreshold float64  `json:"bloom_threshold" toml:"bloom_threshold"`
	Exposure       float64  `json:"exposure" toml:"exposure"`

	// Output
	Width       int `json:"width" toml:"width"`
	Height      int `json:"height" toml:"height"`
	Supersample int `json:"supersample" toml:"supersample"`
	Workers     int `json:"workers" toml:"workers"`
}

// Load reads a config file. Files ending in .toml are parsed as TOML,
// everything else as JSON. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Empty
// strings, zero ints and nil pointers mean "not given".
type Flags struct {
	Asset       string
	Kind        string
	Output      string
	OutputDir   string
	Background  string
	Transparent *bool
	Emissive    string

	CameraToObject     *float64
	ObjectToBackground *float64
	BloomStrength      *float64
	BloomRadius        *float64
	BloomThreshold     *float64
	Exposure           *float64

	Width       int
	Height      int
	Supersample int
	Workers     int
}

// Resolve applies flag overrides, expands ~ in paths and fills defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	setString(&c.Asset, flags.Asset)
	setString(&c.Kind, flags.Kind)
	setString(&c.Output, flags.Output)
	setString(&c.OutputDir, flags.OutputDir)
	setString(&c.Background, flags.Background)
	setString(&c.Emissive, flags.Emissive)
	if flags.Transparent != nil {
		c.Transparent = *flags.Transparent
	}
	setFloat(&c.CameraToObject, flags.CameraToObject)
	setFloat(&c.ObjectToBackground, flags.ObjectToBackground)
	setFloat(&c.BloomThreshold, flags.BloomThreshold)
	setFloat(&c.Exposure, flags.Exposure)
	if flags.BloomStrength != nil {
		c.BloomStrength = flags.BloomStrength
	}
	if flags.BloomRadius != nil {
		c.BloomRadius = flags.BloomRadius
	}
	setInt(&c.Width, flags.Width)
	setInt(&c.Height, flags.Height)
	setInt(&c.Supersample, flags.Supersample)
	setInt(&c.Workers, flags.Workers)

	for _, p := range []*string{&c.Asset, &c.Output, &c.OutputDir} {
		if exp, err := homedir.Expand(*p); err == nil {
			*p = exp
		}
	}

	// Defaults
	def := viewer.DefaultOptions()
	if c.Background == "" {
		c.Background = "#000000"
	}
	if c.CameraToObject <= 0 {
		c.CameraToObject = def.CameraToObject
	}
	if c.ObjectToBackground <= 0 {
		c.ObjectToBackground = def.ObjectToBackground
	}
	if c.FOV <= 0 {
		c.FOV = camera.DefaultFOV
	}
	if c.BloomStrength == nil {
		v := def.BloomStrength
		c.BloomStrength = &v
	}
	if c.BloomRadius == nil {
		v := def.BloomRadius
		c.BloomRadius = &v
	}
	if c.Exposure <= 0 {
		c.Exposure = def.Exposure
	}
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Output == "" && c.Asset != "" {
		base := strings.TrimSuffix(filepath.Base(c.Asset), filepath.Ext(c.Asset))
		c.Output = filepath.Join(c.OutputDir, base+".webp")
	}
}

// Options converts the resolved config into viewer construction parameters.
func (c *Config) Options() (viewer.Options, error) {
	opts := viewer.DefaultOptions()
	kind, err := ingest.ParseKind(c.Kind)
	if err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}
	bg, err := ParseColor(c.Background)
	if err != nil {
		return opts, fmt.Errorf("config: background: %w", err)
	}
	if c.Emissive != "" {
		e, err := ParseColor(c.Emissive)
		if err != nil {
			return opts, fmt.Errorf("config: emissive: %w", err)
		}
		// Black is the "no override" default.
		if !e.IsBlack() {
			opts.Emissive = &e
		}
	}

	opts.Kind = kind
	opts.Locator = c.Asset
	opts.Background = bg
	opts.Transparent = c.Transparent
	opts.CameraToObject = c.CameraToObject
	opts.ObjectToBackground = c.ObjectToBackground
	opts.FOV = c.FOV
	if c.BloomStrength != nil {
		opts.BloomStrength = *c.BloomStrength
	}
	if c.BloomRadius != nil {
		opts.BloomRadius = *c.BloomRadius
	}
	opts.BloomThreshold = c.BloomThreshold
	opts.Exposure = c.Exposure
	opts.Supersample = c.Supersample
	return opts, nil
}

// ParseColor reads a hex color (#rgb, #rrggbb or #rrggbbaa) as a linear color.
func ParseColor(s string) (scene.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colors.FromHex(s)
	if err != nil {
		return scene.Color{}, err
	}
	return scene.ColorFromRGBA(c), nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
