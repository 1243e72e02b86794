// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// MockFrames generates n frames of smooth synthetic motion for every joint
// in joints: each joint swings about its own axis and the root walks a
// slow circle. Useful for exercising a playback rig without capture files.
func MockFrames(n int, joints []skeleton.Joint) []Frame {
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		elapsed := float64(i) / 60.0
		f := make(Frame, len(joints))

		for k, j := range joints {
			phase := float64(k) * 0.4
			angle := 0.35 * math.Sin(elapsed+phase)
			axis := [3]float64{math.Sin(phase), math.Cos(phase), 0.3}
			norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
			s := math.Sin(angle / 2)

			sample := JointSample{
				Orientation: orientation.FromXYZW(axis[0]/norm*s, axis[1]/norm*s, axis[2]/norm*s, math.Cos(angle/2)),
				Acceleration: vec(orientation.Vec3{
					X: 0.2 * math.Cos(elapsed*0.7+phase),
					Y: 9.81,
					Z: 0.2 * math.Sin(elapsed*0.7+phase),
				}),
			}
			if j == skeleton.Root {
				sample.Position = vec(orientation.Vec3{
					X: 30 * math.Sin(elapsed*0.2),
					Y: 90,
					Z: 30 * math.Cos(elapsed*0.2),
				})
			}
			f[j] = sample
		}
		frames[i] = f
	}
	return frames
}
