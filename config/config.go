// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig            `yaml:"screen"`
	Sim       SimConfig               `yaml:"sim"`
	Render    RenderConfig            `yaml:"render"`
	GPU       GPUConfig               `yaml:"gpu"`
	Telemetry TelemetryConfig         `yaml:"telemetry"`
	Presets   map[string]PresetConfig `yaml:"presets"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimConfig holds simulation startup and pacing settings.
type SimConfig struct {
	Preset string `yaml:"preset"` // Starting preset name
	Wrap   bool   `yaml:"wrap"`   // Toroidal boundaries
	Layout string `yaml:"layout"` // "uniform" or "clustered" initial placement

	// Particles and Kinds override the preset's counts when non-zero.
	Particles int `yaml:"particles"`
	Kinds     int `yaml:"kinds"`

	StepsPerSecond     int `yaml:"steps_per_second"`      // Normal pacing
	SlowStepsPerSecond int `yaml:"slow_steps_per_second"` // Pacing while slowed
	MaxStepsPerFrame   int `yaml:"max_steps_per_frame"`   // Catch-up cap after stalls
}

// RenderConfig holds drawing settings.
type RenderConfig struct {
	TrailLength int  `yaml:"trail_length"` // Snapshots kept per particle (0 = no trails)
	ShowTrails  bool `yaml:"show_trails"`
}

// GPUConfig holds compute backend settings.
type GPUConfig struct {
	Enabled bool `yaml:"enabled"` // Use the compute shader backend when available
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// PresetConfig describes the random distributions one named preset draws its
// rule table from.
type PresetConfig struct {
	Kinds     int `yaml:"kinds"`
	Particles int `yaml:"particles"`

	AttractionMean float64 `yaml:"attraction_mean"`
	AttractionStd  float64 `yaml:"attraction_std"`

	RepelMin float64 `yaml:"repel_min"`
	RepelMax float64 `yaml:"repel_max"`

	InfluenceMin float64 `yaml:"influence_min"`
	InfluenceMax float64 `yaml:"influence_max"`

	Friction  float64 `yaml:"friction"`
	FlatForce bool    `yaml:"flat_force"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32   float32  // Screen.Width as float32
	ScreenH32   float32  // Screen.Height as float32
	PresetNames []string // Sorted preset names for stable cycling
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the simulation cannot start from.
func (c *Config) validate() error {
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		return fmt.Errorf("config: screen size %dx%d is invalid", c.Screen.Width, c.Screen.Height)
	}
	if len(c.Presets) == 0 {
		return fmt.Errorf("config: no presets defined")
	}
	if _, ok := c.Presets[c.Sim.Preset]; !ok {
		return fmt.Errorf("config: starting preset %q is not defined", c.Sim.Preset)
	}
	if c.Sim.Layout != "uniform" && c.Sim.Layout != "clustered" {
		return fmt.Errorf("config: layout %q must be uniform or clustered", c.Sim.Layout)
	}
	for name, p := range c.Presets {
		if p.Kinds < 1 {
			return fmt.Errorf("config: preset %q has no kinds", name)
		}
		if p.Particles < 1 {
			return fmt.Errorf("config: preset %q has no particles", name)
		}
		if p.Friction < 0 || p.Friction >= 1 {
			return fmt.Errorf("config: preset %q friction %v outside [0,1)", name, p.Friction)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.PresetNames = make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		c.Derived.PresetNames = append(c.Derived.PresetNames, name)
	}
	sort.Strings(c.Derived.PresetNames)
}

// Preset returns the named preset.
func (c *Config) Preset(name string) (PresetConfig, error) {
	p, ok := c.Presets[name]
	if !ok {
		return PresetConfig{}, fmt.Errorf("config: unknown preset %q", name)
	}
	return p, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
