package calibration

import (
	"fmt"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// Rig holds the playback-rig constants of the capture→playback coordinate
// remap. The defaults reproduce the rig the capture data was first replayed
// on; they have no documented derivation and should be confirmed per rig.
type Rig struct {
	// PositionScale divides capture positions into playback units.
	PositionScale float64
	// VerticalOffset is added to the root height after re-zeroing.
	VerticalOffset float64
	// JointPositions remaps every joint's source position relative to the
	// root reference. When false only the root carries a position.
	JointPositions bool
	// IdentityJoints always stream the identity rotation.
	IdentityJoints []skeleton.Joint
}

// DefaultRig returns the source rig: positions divided by 3, root lifted by
// 11 units, root-only positions, no pinned joints.
func DefaultRig() Rig {
	return Rig{
		PositionScale:  3.0,
		VerticalOffset: 11.0,
	}
}

// Validate checks the rig constants.
func (r Rig) Validate() error {
	if r.PositionScale <= 0 {
		return fmt.Errorf("position scale must be > 0, got %g", r.PositionScale)
	}
	for _, j := range r.IdentityJoints {
		if !j.Valid() {
			return fmt.Errorf("invalid identity joint %v", j)
		}
	}
	return nil
}

// Remap converts a capture-space orientation to playback handedness by
// negating the x and z components.
func Remap(q orientation.Quat) orientation.Quat {
	return orientation.Quat{X: -q.X, Y: q.Y, Z: -q.Z, W: q.W}
}

// RemapPosition converts a capture-space position to playback units and
// handedness: (-x/s, y/s, -z/s).
func (r Rig) RemapPosition(p orientation.Vec3) orientation.Vec3 {
	return orientation.Vec3{
		X: -p.X / r.PositionScale,
		Y: p.Y / r.PositionScale,
		Z: -p.Z / r.PositionScale,
	}
}

func (r Rig) pinned(j skeleton.Joint) bool {
	for _, p := range r.IdentityJoints {
		if p == j {
			return true
		}
	}
	return false
}
