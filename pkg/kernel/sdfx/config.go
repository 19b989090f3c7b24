package sdfx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the numeric policy of the reference kernel.
type Config struct {
	// Tolerance is the distance under which two points are the same vertex.
	Tolerance float64 `yaml:"tolerance"`
	// FilletCells is the marching cubes resolution along the longest axis
	// of a filleted solid.
	FilletCells int `yaml:"filletCells"`
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		Tolerance:   1e-7,
		FilletCells: 48,
	}
}

// Validate checks that the values are usable.
func (c Config) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("sdfx: config: tolerance must be positive, got %g", c.Tolerance)
	}
	if c.FilletCells < 4 {
		return fmt.Errorf("sdfx: config: filletCells must be at least 4, got %d", c.FilletCells)
	}
	return nil
}

// LoadConfig reads a YAML file and merges it over DefaultConfig. Fields
// missing from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sdfx: config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sdfx: config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
