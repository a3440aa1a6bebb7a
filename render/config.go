package render

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects the runtime knobs. All fields have working defaults;
// a YAML file overrides them selectively.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Path tracing
	MaxDepth     int `yaml:"max_depth"` // iteration cap when Russian roulette is off
	LightSamples int `yaml:"nr_light_samples"`
	BVHBins      int `yaml:"bvh_bins"`

	// Denoiser
	KernelSize        int     `yaml:"kernel_size"` // odd; 0 disables the filter
	SigmaSpatial      float32 `yaml:"sigma_spatial"`
	SigmaIllumination float32 `yaml:"sigma_illumination"`
	SigmaFirefly      float32 `yaml:"sigma_firefly"`
	SigmaPosition     float32 `yaml:"sigma_position"`
	SigmaNormal       float32 `yaml:"sigma_normal"`
	SigmaMaterial     float32 `yaml:"sigma_material"`

	// Feature toggles
	UseBVH             bool `yaml:"use_bvh"`
	UseNEE             bool `yaml:"use_nee"`
	UseRussianRoulette bool `yaml:"use_russian_roulette"`
	UseMIS             bool `yaml:"use_mis"`
	UseSSAA            bool `yaml:"use_ssaa"`
	UseVignette        bool `yaml:"use_vignette"`
	VisualizeBVH       bool `yaml:"visualize_bvh"`

	Workers int    `yaml:"workers"` // 0 = one per CPU core
	Sky     string `yaml:"sky"`     // optional .hdr/.bin environment map
}

func DefaultConfig() Config {
	return Config{
		Width:              512,
		Height:             512,
		MaxDepth:           4,
		LightSamples:       1,
		BVHBins:            8,
		KernelSize:         65,
		SigmaSpatial:       10,
		SigmaIllumination:  25,
		SigmaFirefly:       25,
		SigmaPosition:      2,
		SigmaNormal:        0.5,
		SigmaMaterial:      0.5,
		UseBVH:             true,
		UseNEE:             true,
		UseRussianRoulette: true,
		UseMIS:             true,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.KernelSize < 0 || (c.KernelSize > 0 && c.KernelSize%2 == 0) {
		return fmt.Errorf("kernel_size must be odd or 0, got %d", c.KernelSize)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.LightSamples < 1 {
		return fmt.Errorf("nr_light_samples must be at least 1, got %d", c.LightSamples)
	}
	if c.BVHBins < 2 {
		return fmt.Errorf("bvh_bins must be at least 2, got %d", c.BVHBins)
	}
	return nil
}
