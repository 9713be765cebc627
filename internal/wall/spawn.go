package wall

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables emitted by the launch-script generator. They fix the
// vehicle spawn pose and therefore the origin of the local NED frame.
const (
	EnvSpawnX   = "PX4_SPAWN_X"
	EnvSpawnY   = "PX4_SPAWN_Y"
	EnvSpawnZ   = "PX4_SPAWN_Z"
	EnvSpawnYaw = "PX4_SPAWN_YAW"
)

// SpawnPose is the vehicle spawn pose in world coordinates. The mission core
// only reads it to interpret the NED frame origin; it is never mutated.
type SpawnPose struct {
	X   float64
	Y   float64
	Z   float64
	Yaw float64
}

// SpawnPoseFromEnv reads the spawn pose from the PX4_SPAWN_* environment
// variables. Unset variables default to zero; malformed values are an error.
func SpawnPoseFromEnv() (SpawnPose, error) {
	var p SpawnPose
	for _, v := range []struct {
		env string
		dst *float64
	}{
		{EnvSpawnX, &p.X},
		{EnvSpawnY, &p.Y},
		{EnvSpawnZ, &p.Z},
		{EnvSpawnYaw, &p.Yaw},
	} {
		s, ok := os.LookupEnv(v.env)
		if !ok || s == "" {
			continue
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return SpawnPose{}, fmt.Errorf("parsing %s=%q: %w", v.env, s, err)
		}
		*v.dst = f
	}

	return p, nil
}
