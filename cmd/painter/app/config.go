package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/mission"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Wall     WallConfig    `yaml:"wall"`
	Link     LinkConfig    `yaml:"link"`
	Mission  MissionConfig `yaml:"mission"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`

	// Level is the parsed LogLevel, populated by LoadConfig.
	Level slog.Level `yaml:"-"`
}

// WallConfig points at the wall geometry file.
type WallConfig struct {
	ConfigFile string `yaml:"configFile"`
}

// LinkConfig selects and tunes the flight link. All intervals are seconds.
type LinkConfig struct {
	Endpoint string  `yaml:"endpoint"`
	MaxSpeed float64 `yaml:"maxSpeed"`
	Battery  float64 `yaml:"battery"`
	Drain    float64 `yaml:"drainPerSecond"`
}

// MissionConfig tunes the pattern planner and the mission controller. All
// durations are seconds; zero values fall back to built-in defaults.
type MissionConfig struct {
	Pattern         string  `yaml:"pattern"`
	StripeSpacing   float64 `yaml:"stripeSpacing"`
	Tolerance       float64 `yaml:"tolerance"`
	GroundClearance float64 `yaml:"groundClearance"`

	VerticalSpeed    float64 `yaml:"verticalSpeed"`
	LateralSpeed     float64 `yaml:"lateralSpeed"`
	PositioningSpeed float64 `yaml:"positioningSpeed"`

	TakeoffAltitude float64 `yaml:"takeoffAltitude"`
	WaypointTimeout float64 `yaml:"waypointTimeout"`
	AbortOnTimeout  bool    `yaml:"abortOnTimeout"`
	HoverTime       float64 `yaml:"hoverTime"`

	BatteryFloor float64 `yaml:"batteryFloor"`
	StaleAfter   float64 `yaml:"telemetryStaleAfter"`
}

// StorageConfig represents mission log settings
type StorageConfig struct {
	Enabled       bool    `yaml:"enabled"`
	DataDirectory string  `yaml:"dataDirectory"`
	TrackInterval float64 `yaml:"trackSampleInterval"`
}

// Overrides are the command-line overrides layered on top of the loaded
// configuration. Zero values leave the configured value in place.
type Overrides struct {
	Pattern          string
	VerticalSpeed    float64
	LateralSpeed     float64
	PositioningSpeed float64
	Tolerance        float64
}

// Apply layers o over the mission configuration.
func (c *Config) Apply(o Overrides) error {
	if o.Pattern != "" {
		if !mission.Pattern(o.Pattern).Valid() {
			return fmt.Errorf("invalid pattern %q: must be vertical or horizontal", o.Pattern)
		}
		c.Mission.Pattern = o.Pattern
	}
	if o.VerticalSpeed != 0 {
		c.Mission.VerticalSpeed = o.VerticalSpeed
	}
	if o.LateralSpeed != 0 {
		c.Mission.LateralSpeed = o.LateralSpeed
	}
	if o.PositioningSpeed != 0 {
		c.Mission.PositioningSpeed = o.PositioningSpeed
	}
	if o.Tolerance != 0 {
		c.Mission.Tolerance = o.Tolerance
	}
	return nil
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Settings.LogLevel != "" {
		if err = config.Settings.Level.UnmarshalText([]byte(config.Settings.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", config.Settings.LogLevel, err)
		}
	}

	if config.Wall.ConfigFile == "" {
		return nil, fmt.Errorf("no wall configuration file provided")
	}
	if config.Mission.Pattern == "" {
		config.Mission.Pattern = string(mission.PatternVertical)
	}
	if !mission.Pattern(config.Mission.Pattern).Valid() {
		return nil, fmt.Errorf("invalid pattern %q: must be vertical or horizontal", config.Mission.Pattern)
	}

	return &config, nil
}
