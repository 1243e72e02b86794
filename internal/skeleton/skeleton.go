// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package skeleton defines the fixed joint set used by every stage of the
// pipeline and the lookup from capture sensor names to joints.
package skeleton

import (
	"fmt"
	"strings"
)

// Joint identifies one joint of the capture skeleton.
type Joint uint8

const (
	Hips Joint = iota
	Spine
	Spine1
	Spine2
	Spine3
	Neck
	Head
	RightShoulder
	RightArm
	RightForeArm
	RightHand
	LeftShoulder
	LeftArm
	LeftForeArm
	LeftHand
	RightUpLeg
	RightLeg
	RightFoot
	LeftUpLeg
	LeftLeg
	LeftFoot

	numJoints
)

// Root is the joint that carries the skeleton's world position.
const Root = Hips

var jointNames = [numJoints]string{
	Hips:          "Hips",
	Spine:         "Spine",
	Spine1:        "Spine1",
	Spine2:        "Spine2",
	Spine3:        "Spine3",
	Neck:          "Neck",
	Head:          "Head",
	RightShoulder: "RightShoulder",
	RightArm:      "RightArm",
	RightForeArm:  "RightForeArm",
	RightHand:     "RightHand",
	LeftShoulder:  "LeftShoulder",
	LeftArm:       "LeftArm",
	LeftForeArm:   "LeftForeArm",
	LeftHand:      "LeftHand",
	RightUpLeg:    "RightUpLeg",
	RightLeg:      "RightLeg",
	RightFoot:     "RightFoot",
	LeftUpLeg:     "LeftUpLeg",
	LeftLeg:       "LeftLeg",
	LeftFoot:      "LeftFoot",
}

// All lists every joint in table column order.
var All = func() []Joint {
	out := make([]Joint, numJoints)
	for i := range out {
		out[i] = Joint(i)
	}
	return out
}()

// Playback is the joint order the playback rig expects in each outgoing frame.
var Playback = []Joint{
	Hips, Spine3, Head,
	LeftArm, LeftForeArm, LeftHand,
	RightArm, RightForeArm, RightHand,
	LeftUpLeg, LeftLeg, LeftFoot,
	RightUpLeg, RightLeg, RightFoot,
}

var byName = func() map[string]Joint {
	m := make(map[string]Joint, numJoints)
	for i, n := range jointNames {
		m[n] = Joint(i)
	}
	return m
}()

// sensorToJoint maps the IMU placement names used in sensor logs to joints.
var sensorToJoint = map[string]Joint{
	"Head":     Head,
	"Sternum":  Spine3,
	"Pelvis":   Hips,
	"L_UpArm":  LeftArm,
	"R_UpArm":  RightArm,
	"L_LowArm": LeftForeArm,
	"R_LowArm": RightForeArm,
	"L_UpLeg":  LeftUpLeg,
	"R_UpLeg":  RightUpLeg,
	"L_LowLeg": LeftLeg,
	"R_LowLeg": RightLeg,
	"L_Foot":   LeftFoot,
	"R_Foot":   RightFoot,
}

// String returns the canonical joint name.
func (j Joint) String() string {
	if j.Valid() {
		return jointNames[j]
	}
	return fmt.Sprintf("Joint(%d)", uint8(j))
}

// Valid reports whether j is a declared joint.
func (j Joint) Valid() bool {
	return j < numJoints
}

// Parse resolves a canonical joint name. It is the only place arbitrary
// strings become joints.
func Parse(name string) (Joint, bool) {
	j, ok := byName[name]
	return j, ok
}

// FromSensor resolves a sensor placement name. Sensors without a joint
// (extra or unknown placements) report false and must be dropped.
func FromSensor(name string) (Joint, bool) {
	j, ok := sensorToJoint[name]
	return j, ok
}

// ParseList parses a comma separated list of joint names.
func ParseList(s string) ([]Joint, error) {
	var out []Joint
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		j, ok := Parse(name)
		if !ok {
			return nil, fmt.Errorf("unknown joint %q", name)
		}
		out = append(out, j)
	}
	return out, nil
}
