package wall

import (
	"errors"
	"strings"
	"testing"
)

const sampleConfig = `{
  "main_wall": {
    "dimensions": {"width": 15.0, "height": 5.0, "thickness": 0.2},
    "position": {"x": 7.0, "y": 0.0, "z": 2.5}
  }
}`

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if c.Dimensions.Width != 15.0 {
		t.Errorf("expected width 15.0, got %g", c.Dimensions.Width)
	}
	if c.Dimensions.Height != 5.0 {
		t.Errorf("expected height 5.0, got %g", c.Dimensions.Height)
	}
	if c.Dimensions.Thickness != 0.2 {
		t.Errorf("expected thickness 0.2, got %g", c.Dimensions.Thickness)
	}
	if c.Position.X != 7.0 || c.Position.Y != 0.0 || c.Position.Z != 2.5 {
		t.Errorf("unexpected position: %+v", c.Position)
	}
}

func TestReadInvalidGeometry(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{
			name:  "zero width",
			json:  `{"main_wall": {"dimensions": {"width": 0, "height": 5, "thickness": 0.2}}}`,
			field: "width",
		},
		{
			name:  "negative height",
			json:  `{"main_wall": {"dimensions": {"width": 15, "height": -1, "thickness": 0.2}}}`,
			field: "height",
		},
		{
			name:  "negative thickness",
			json:  `{"main_wall": {"dimensions": {"width": 15, "height": 5, "thickness": -0.2}}}`,
			field: "thickness",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.json))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestReadMalformedJSON(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSpawnPoseFromEnv(t *testing.T) {
	t.Setenv(EnvSpawnX, "-0.50")
	t.Setenv(EnvSpawnY, "-1.60")
	t.Setenv(EnvSpawnZ, "1.00")
	t.Setenv(EnvSpawnYaw, "0.00")

	p, err := SpawnPoseFromEnv()
	if err != nil {
		t.Fatalf("SpawnPoseFromEnv failed: %v", err)
	}

	if p.X != -0.5 || p.Y != -1.6 || p.Z != 1.0 || p.Yaw != 0.0 {
		t.Errorf("unexpected pose: %+v", p)
	}
}

func TestSpawnPoseFromEnvMalformed(t *testing.T) {
	t.Setenv(EnvSpawnX, "not-a-number")

	if _, err := SpawnPoseFromEnv(); err == nil {
		t.Fatal("expected error for malformed value")
	}
}

func TestSpawnPoseFromEnvUnset(t *testing.T) {
	t.Setenv(EnvSpawnX, "")

	p, err := SpawnPoseFromEnv()
	if err != nil {
		t.Fatalf("SpawnPoseFromEnv failed: %v", err)
	}
	if p != (SpawnPose{}) {
		t.Errorf("expected zero pose, got %+v", p)
	}
}
