// Package config provides configuration management for nodefield.
//
// Config file locations (priority order):
//  1. explicit --config path
//  2. $NODEFIELD_CONFIG
//  3. ./nodefield.yaml
//
// With no file present, defaults are used.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/TFMV/nodefield/engine"
	"github.com/TFMV/nodefield/models"
	"github.com/TFMV/nodefield/physics"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding a config path
const EnvConfigPath = "NODEFIELD_CONFIG"

// DefaultFileName is looked up in the working directory
const DefaultFileName = "nodefield.yaml"

// Config is the on-disk configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Boundary   BoundaryConfig   `yaml:"boundary"`
	Noise      NoiseConfig      `yaml:"noise"`
	Loop       LoopConfig       `yaml:"loop"`
	Server     ServerConfig     `yaml:"server"`
	Render     RenderConfig     `yaml:"render"`
}

// SimulationConfig sizes the node field
// Numeric fields are pointers so an explicit 0 is kept and rejected by
// Validate instead of being replaced by the default.
type SimulationConfig struct {
	NodeCount     *int     `yaml:"node_count"`
	K             *int     `yaml:"k"`
	VelocityScale *float64 `yaml:"velocity_scale"`
	Seed          uint64   `yaml:"seed"`  // 0 = random
	Noise         string   `yaml:"noise"` // uniform or simplex
}

// BoundaryConfig describes the soft walls
type BoundaryConfig struct {
	Bounds  [3]float64 `yaml:"bounds"`
	Soft    [3]float64 `yaml:"soft"`
	Gain    *float64   `yaml:"gain"`
	Damping *float64   `yaml:"damping"`
}

// NoiseConfig describes random velocity kicks
type NoiseConfig struct {
	Probability  *float64 `yaml:"probability"`
	Min          *float64 `yaml:"min"`
	Max          *float64 `yaml:"max"`
	SimplexScale float64  `yaml:"simplex_scale"`
}

// LoopConfig sets the frame rate
type LoopConfig struct {
	FPS float64 `yaml:"fps"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RenderConfig holds renderer defaults
type RenderConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background"`
	NodeRadius float64 `yaml:"node_radius"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned string is the path used, empty for defaults.
func Load(explicit string) (*Config, string, error) {
	path := FindConfigPath(explicit)

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// FindConfigPath returns the first config location that applies
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML and fills unset fields with defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the standard field
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	eng := engine.DefaultConfig()

	// pointer fields default only when absent from the file
	setDefault(&c.Simulation.NodeCount, eng.NodeCount)
	setDefault(&c.Simulation.K, eng.K)
	setDefault(&c.Simulation.VelocityScale, eng.VelocityScale)
	if c.Simulation.Noise == "" {
		c.Simulation.Noise = eng.Noise
	}

	if c.Boundary.Bounds == [3]float64{} {
		c.Boundary.Bounds = vecToArray(eng.Boundary.Bounds)
	}
	if c.Boundary.Soft == [3]float64{} {
		c.Boundary.Soft = vecToArray(eng.Boundary.Soft)
	}
	setDefault(&c.Boundary.Gain, eng.Boundary.Gain)
	setDefault(&c.Boundary.Damping, eng.Boundary.Damping)

	// an explicit probability of 0 disables kicks; each clamp bound
	// defaults on its own
	setDefault(&c.Noise.Probability, eng.Kicks.Probability)
	setDefault(&c.Noise.Min, eng.Kicks.Min)
	setDefault(&c.Noise.Max, eng.Kicks.Max)
	if c.Noise.SimplexScale == 0 {
		c.Noise.SimplexScale = eng.NoiseScale
	}

	if c.Loop.FPS == 0 {
		c.Loop.FPS = 60
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Render.Width == 0 {
		c.Render.Width = 800
	}
	if c.Render.Height == 0 {
		c.Render.Height = 600
	}
	if c.Render.Background == "" {
		c.Render.Background = "#000000"
	}
	if c.Render.NodeRadius == 0 {
		c.Render.NodeRadius = 4
	}
}

// Engine converts the file settings into a simulation config
func (c *Config) Engine() engine.Config {
	return engine.Config{
		NodeCount:     *c.Simulation.NodeCount,
		K:             *c.Simulation.K,
		VelocityScale: *c.Simulation.VelocityScale,
		Seed:          c.Simulation.Seed,
		Noise:         c.Simulation.Noise,
		NoiseScale:    c.Noise.SimplexScale,
		Boundary: physics.BoundaryParams{
			Bounds:  arrayToVec(c.Boundary.Bounds),
			Soft:    arrayToVec(c.Boundary.Soft),
			Gain:    *c.Boundary.Gain,
			Damping: *c.Boundary.Damping,
		},
		Kicks: physics.NoiseParams{
			Probability:   *c.Noise.Probability,
			VelocityScale: *c.Simulation.VelocityScale,
			Min:           *c.Noise.Min,
			Max:           *c.Noise.Max,
		},
	}
}

// Interval returns the time between frames
func (c *Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.Loop.FPS)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Loop.FPS <= 0 {
		return fmt.Errorf("loop: fps must be positive, got %g", c.Loop.FPS)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render: size must be positive, got %gx%g", c.Render.Width, c.Render.Height)
	}
	return nil
}

func setDefault[T any](field **T, value T) {
	if *field == nil {
		*field = &value
	}
}

func vecToArray(v models.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func arrayToVec(a [3]float64) models.Vec3 {
	return models.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
