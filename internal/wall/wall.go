package wall

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ConfigError reports invalid wall geometry or pattern spacing. It is fatal:
// no vehicle command may be issued once one is returned.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("wall config: %s: %s", e.Field, e.Msg)
}

// Dimensions is the wall extent in meters.
type Dimensions struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

// Position is the wall center in world coordinates, meters.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Config is the wall geometry record produced by the world generator.
// It is immutable once loaded.
type Config struct {
	Dimensions Dimensions
	Position   Position
}

// configFile mirrors the nested layout of paint_wall_config.json emitted by
// the world generator.
type configFile struct {
	MainWall struct {
		Dimensions Dimensions `json:"dimensions"`
		Position   Position   `json:"position"`
	} `json:"main_wall"`
}

// Load reads a wall configuration file and validates its geometry.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wall config: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a wall configuration from r and validates its geometry.
func Read(r io.Reader) (*Config, error) {
	var cf configFile
	if err := json.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("parsing wall config: %w", err)
	}

	c := Config{
		Dimensions: cf.MainWall.Dimensions,
		Position:   cf.MainWall.Position,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks the wall geometry. A zero or negative extent cannot be
// covered by any spray pattern.
func (c *Config) Validate() error {
	if c.Dimensions.Width <= 0 {
		return &ConfigError{Field: "width", Msg: fmt.Sprintf("must be positive, got %g", c.Dimensions.Width)}
	}
	if c.Dimensions.Height <= 0 {
		return &ConfigError{Field: "height", Msg: fmt.Sprintf("must be positive, got %g", c.Dimensions.Height)}
	}
	if c.Dimensions.Thickness < 0 {
		return &ConfigError{Field: "thickness", Msg: fmt.Sprintf("must not be negative, got %g", c.Dimensions.Thickness)}
	}
	return nil
}
