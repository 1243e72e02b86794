package imu

import (
	"github.com/relabs-tech/mocap_streamer/internal/orientation"
)

// SensorRow is one sensor's reading within one frame of a sensor log.
type SensorRow struct {
	Name string `json:"name"` // sensor placement, e.g. "Pelvis"

	Orientation orientation.Quat `json:"orientation"` // converted from the log's w x y z
	Accel       orientation.Vec3 `json:"accel"`

	// Gyro and magnetometer are parsed for validation but not used by
	// calibration or streaming.
	Gyro orientation.Vec3 `json:"gyro"`
	Mag  orientation.Vec3 `json:"mag"`
}

// rowValues is the number of numeric fields after the sensor name:
// qw qx qy qz, ax ay az, gx gy gz, mx my mz.
const rowValues = 13
