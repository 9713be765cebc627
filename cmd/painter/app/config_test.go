package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "painter.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
settings:
  logLevel: debug
wall:
  configFile: wall.json
mission:
  pattern: vertical
  tolerance: 0.3
  verticalSpeed: 1.2
`

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Mission.Pattern != "vertical" {
		t.Errorf("Pattern = %q, want vertical", config.Mission.Pattern)
	}
	if config.Mission.Tolerance != 0.3 {
		t.Errorf("Tolerance = %v, want 0.3", config.Mission.Tolerance)
	}
	if got := config.Settings.Level.String(); got != "DEBUG" {
		t.Errorf("log level = %s, want DEBUG", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing wall file", "mission:\n  pattern: vertical\n"},
		{"bad pattern", "wall:\n  configFile: wall.json\nmission:\n  pattern: spiral\n"},
		{"bad log level", "settings:\n  logLevel: loud\nwall:\n  configFile: wall.json\n"},
		{"malformed yaml", "wall: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	err = config.Apply(Overrides{
		Pattern:      "horizontal",
		LateralSpeed: 2.0,
		Tolerance:    0.5,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if config.Mission.Pattern != "horizontal" {
		t.Errorf("Pattern = %q, want horizontal", config.Mission.Pattern)
	}
	if config.Mission.LateralSpeed != 2.0 {
		t.Errorf("LateralSpeed = %v, want 2.0", config.Mission.LateralSpeed)
	}
	if config.Mission.Tolerance != 0.5 {
		t.Errorf("Tolerance = %v, want 0.5", config.Mission.Tolerance)
	}
	if config.Mission.VerticalSpeed != 1.2 {
		t.Errorf("VerticalSpeed = %v, want 1.2 (not overridden)", config.Mission.VerticalSpeed)
	}
}

func TestApplyInvalidPattern(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if err = config.Apply(Overrides{Pattern: "spiral"}); err == nil {
		t.Error("Apply() expected error for invalid pattern, got nil")
	}
}
